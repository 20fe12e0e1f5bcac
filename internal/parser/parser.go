// Package parser extracts module boundaries from built bundle files.
//
// A bundle is the build tool's final output: a bootstrap runtime invoked
// with a module map (object literal of id to factory function, or an array
// of factory functions). The parser locates that map in the bundle's syntax
// tree and slices each module's exact post-minification source out of the
// file, so the analyzer can report real parsed sizes instead of declared
// ones. Failures are recoverable: the affected asset falls back to
// stats-only sizing.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/javascript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// ErrNoRootNode indicates the syntax tree had no usable root.
var ErrNoRootNode = errors.New("bundle has no parse tree root")

// ErrNoModuleMap indicates no module map was found in the bundle.
var ErrNoModuleMap = errors.New("no module map found in bundle")

// Bundle is one parsed bundle file: its full source plus a mapping from
// module id to that module's exact source slice within it.
type Bundle struct {
	Src     string
	Modules map[string]string
}

// Parser produces module-boundary mappings for bundle files on disk.
type Parser interface {
	Parse(path string) (*Bundle, error)
}

// jsLanguage loads the JavaScript grammar once.
var jsLanguage = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(javascript.GetLanguage())
})

// JSParser parses JavaScript bundles with tree-sitter. Safe for concurrent
// use; each Parse call creates its own tree-sitter parser instance.
type JSParser struct{}

// NewJSParser creates a bundle parser.
func NewJSParser() *JSParser {
	return &JSParser{}
}

// Parse reads and parses the bundle file at path.
func (p *JSParser) Parse(path string) (*Bundle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	return p.ParseSource(content)
}

// ParseSource parses bundle source held in memory.
func (p *JSParser) ParseSource(content []byte) (*Bundle, error) {
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(jsLanguage())

	parseTree, err := tsParser.ParseString(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}

	root := parseTree.RootNode()
	if root.IsNull() {
		return nil, ErrNoRootNode
	}

	best := findModuleMap(root, content)
	if len(best) == 0 {
		return nil, ErrNoModuleMap
	}

	return &Bundle{Src: string(content), Modules: best}, nil
}

// findModuleMap walks the tree for the largest object literal whose values
// are all factory functions, or the largest all-function array, and slices
// each factory's source.
func findModuleMap(root sitter.Node, content []byte) map[string]string {
	var best map[string]string

	var walk func(node sitter.Node)

	walk = func(node sitter.Node) {
		if candidate := moduleMapCandidate(node, content); len(candidate) > len(best) {
			best = candidate
		}

		for idx := range node.NamedChildCount() {
			child := node.NamedChild(idx)
			if !child.IsNull() {
				walk(child)
			}
		}
	}

	walk(root)

	return best
}

func moduleMapCandidate(node sitter.Node, content []byte) map[string]string {
	switch node.Type() {
	case "object":
		return objectCandidate(node, content)
	case "array":
		return arrayCandidate(node, content)
	default:
		return nil
	}
}

// objectCandidate matches `{"./a.js": function(...) {...}, ...}`.
// Every pair must be function-valued for the object to qualify.
func objectCandidate(node sitter.Node, content []byte) map[string]string {
	modules := make(map[string]string)

	for idx := range node.NamedChildCount() {
		pair := node.NamedChild(idx)
		if pair.IsNull() {
			continue
		}

		if pair.Type() != "pair" {
			return nil
		}

		keyNode := pair.ChildByFieldName("key")
		valueNode := unwrapParens(pair.ChildByFieldName("value"))

		if keyNode.IsNull() || valueNode.IsNull() || !isFactoryFunction(valueNode) {
			return nil
		}

		id, ok := moduleID(keyNode, content)
		if !ok {
			return nil
		}

		modules[id] = valueNode.Content(content)
	}

	return modules
}

// arrayCandidate matches `[function(...) {...}, ...]`; indices become ids.
func arrayCandidate(node sitter.Node, content []byte) map[string]string {
	modules := make(map[string]string)

	for idx := range node.NamedChildCount() {
		element := unwrapParens(node.NamedChild(idx))
		if element.IsNull() || !isFactoryFunction(element) {
			return nil
		}

		modules[strconv.FormatUint(uint64(idx), 10)] = element.Content(content)
	}

	return modules
}

func unwrapParens(node sitter.Node) sitter.Node {
	for !node.IsNull() && node.Type() == "parenthesized_expression" && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}

	return node
}

func isFactoryFunction(node sitter.Node) bool {
	switch node.Type() {
	case "function_expression", "function", "arrow_function", "function_declaration":
		return true
	default:
		return false
	}
}

// moduleID extracts the module id from an object key: quoted strings are
// unquoted, numbers and identifiers are used verbatim. Ids must match the
// stats module ids byte for byte, so escape sequences are resolved for both
// quote styles.
func moduleID(keyNode sitter.Node, content []byte) (string, bool) {
	raw := keyNode.Content(content)

	switch keyNode.Type() {
	case "string":
		if len(raw) < 2 {
			return "", false
		}

		switch raw[0] {
		case '"':
			if unquoted, err := strconv.Unquote(raw); err == nil {
				return unquoted, true
			}
		case '\'':
			if unquoted, ok := unquoteSingle(raw); ok {
				return unquoted, true
			}
		}

		return raw[1 : len(raw)-1], true
	case "number", "property_identifier":
		return raw, true
	default:
		return "", false
	}
}

// unquoteSingle resolves a single-quoted string literal by rewriting it into
// the double-quoted form strconv.Unquote accepts: escaped single quotes
// become bare, bare double quotes become escaped, everything else passes
// through untouched.
func unquoteSingle(raw string) (string, bool) {
	if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		return "", false
	}

	var rewritten strings.Builder

	rewritten.Grow(len(raw) + 2)
	rewritten.WriteByte('"')

	body := raw[1 : len(raw)-1]

	for idx := 0; idx < len(body); idx++ {
		switch body[idx] {
		case '\\':
			if idx+1 >= len(body) {
				return "", false
			}

			if body[idx+1] == '\'' {
				rewritten.WriteByte('\'')
			} else {
				rewritten.WriteByte('\\')
				rewritten.WriteByte(body[idx+1])
			}

			idx++
		case '"':
			rewritten.WriteString(`\"`)
		default:
			rewritten.WriteByte(body[idx])
		}
	}

	rewritten.WriteByte('"')

	unquoted, err := strconv.Unquote(rewritten.String())

	return unquoted, err == nil
}
