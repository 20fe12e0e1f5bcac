// Package tree builds the per-asset composition tree: a rooted hierarchy of
// folders and module leaves mirroring original source file paths, with
// bottom-up aggregation of declared, parsed, and compressed sizes.
//
// Trees are single-use: built once per analysis run, finalized with
// MergeNestedFolders, read during projection, then discarded. Derived sizes
// are memoized per node and are never invalidated.
package tree

import (
	"fmt"
	"strings"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/sizes"
)

// Kind discriminates the node variants.
type Kind int

const (
	// KindFolder is a synthetic path segment with no size of its own.
	KindFolder Kind = iota

	// KindModule is a leaf module.
	KindModule

	// KindConcatModule is a module the build tool merged with others;
	// a leaf that still owns a nested sub-tree of its members.
	KindConcatModule
)

// Record is one module to insert, with its path identifier already split
// into segments by the caller. Records with an empty path are skipped
// silently; that is an accepted edge case of malformed module identifiers,
// not an error.
type Record struct {
	ID      string
	Path    []string
	Size    int64
	Src     string
	HasSrc  bool
	Members []Record
}

// Node is one tree node, either a folder or a (possibly concatenated)
// module leaf.
type Node struct {
	kind     Kind
	name     string
	id       string
	statSize int64
	src      string
	hasSrc   bool

	children map[string]*Node
	order    []*Node

	comp     sizes.Compressor
	srcMemo  *srcMemo
	gzipMemo *int64
}

type srcMemo struct {
	value string
	ok    bool
}

// Tree is a per-asset composition tree.
type Tree struct {
	root *Node
}

// New creates an empty tree whose root folder is named ".".
// The compressor is consulted lazily for per-node compressed sizes.
func New(comp sizes.Compressor) *Tree {
	return &Tree{root: newFolder(".", comp)}
}

// Root returns the root folder.
func (t *Tree) Root() *Node { return t.root }

// Empty reports whether no modules were inserted.
func (t *Tree) Empty() bool { return len(t.root.order) == 0 }

// Insert adds one module record, creating folder nodes for all but the last
// path segment. Concatenated members are inserted recursively relative to
// the leaf's own sub-tree.
func (t *Tree) Insert(rec Record) {
	t.root.insert(rec)
}

// MergeNestedFolders collapses chains of single-child folders into combined
// "a/b" names. It is a one-shot normalization applied after all insertions,
// before sizes are read for projection.
func (t *Tree) MergeNestedFolders() {
	t.root.mergeNestedFolders()
}

func newFolder(name string, comp sizes.Compressor) *Node {
	return &Node{
		kind:     KindFolder,
		name:     name,
		children: make(map[string]*Node),
		comp:     comp,
	}
}

func (n *Node) insert(rec Record) {
	if len(rec.Path) == 0 {
		return
	}

	cur := n

	for _, segment := range rec.Path[:len(rec.Path)-1] {
		child, ok := cur.children[segment]
		if !ok || child.kind != KindFolder {
			// A module occupying a folder position is replaced outright,
			// discarding the previous leaf. Carried over from the original
			// tool's handling of unusual dynamic-import module ids.
			child = newFolder(segment, n.comp)
			cur.setChild(child)
		}

		cur = child
	}

	leaf := &Node{
		kind:     KindModule,
		name:     rec.Path[len(rec.Path)-1],
		id:       rec.ID,
		statSize: rec.Size,
		src:      rec.Src,
		hasSrc:   rec.HasSrc,
		comp:     n.comp,
	}

	if len(rec.Members) > 0 {
		leaf.kind = KindConcatModule
		leaf.children = make(map[string]*Node)

		for _, member := range rec.Members {
			leaf.insert(member)
		}
	}

	cur.setChild(leaf)
}

// setChild adds or replaces a direct child, preserving the original
// insertion position on replacement.
func (n *Node) setChild(child *Node) {
	if n.children == nil {
		n.children = make(map[string]*Node)
	}

	if existing, ok := n.children[child.name]; ok {
		for i, sibling := range n.order {
			if sibling == existing {
				n.order[i] = child

				break
			}
		}
	} else {
		n.order = append(n.order, child)
	}

	n.children[child.name] = child
}

func (n *Node) mergeNestedFolders() {
	for i, child := range n.order {
		for child.kind == KindFolder && len(child.order) == 1 && child.order[0].kind == KindFolder {
			inner := child.order[0]
			inner.name = child.name + "/" + inner.name

			delete(n.children, child.name)
			n.children[inner.name] = inner
			n.order[i] = inner

			child = inner
		}

		child.mergeNestedFolders()
	}
}

// Name returns the node's display name.
func (n *Node) Name() string { return n.name }

// ID returns the module id for leaves, empty for folders.
func (n *Node) ID() string { return n.id }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Children returns direct children in insertion order.
func (n *Node) Children() []*Node { return n.order }

// StatSize returns the declared size: a live sum over children for folders,
// the stats-declared size for leaves. Concatenated leaves report their own
// declared size, which already covers their members.
func (n *Node) StatSize() int64 {
	if n.kind != KindFolder {
		return n.statSize
	}

	var total int64

	for _, child := range n.order {
		total += child.StatSize()
	}

	return total
}

// Src returns the node's real parsed source: its own attributed slice when
// present, otherwise the in-order concatenation of its children's sources.
// ok is false when nothing below the node was attributed. The result is
// memoized for the node's lifetime.
func (n *Node) Src() (string, bool) {
	if n.srcMemo != nil {
		return n.srcMemo.value, n.srcMemo.ok
	}

	var sb strings.Builder

	ok := false

	if n.hasSrc {
		sb.WriteString(n.src)

		ok = true
	} else {
		for _, child := range n.order {
			childSrc, childOK := child.Src()
			if childOK {
				sb.WriteString(childSrc)

				ok = true
			}
		}
	}

	n.srcMemo = &srcMemo{value: sb.String(), ok: ok}

	return n.srcMemo.value, n.srcMemo.ok
}

// ParsedSize returns the byte length of the node's real source.
// ok is false when the node has no attributed source anywhere below it.
func (n *Node) ParsedSize() (int64, bool) {
	src, ok := n.Src()
	if !ok {
		return 0, false
	}

	return int64(len(src)), true
}

// GzipSize returns the compressed byte count of the node's source, computed
// on first access and cached for the node's lifetime. ok is false when the
// node has no source. A compressor failure aborts only this node's
// computation.
func (n *Node) GzipSize() (int64, bool, error) {
	if n.gzipMemo != nil {
		return *n.gzipMemo, true, nil
	}

	src, ok := n.Src()
	if !ok || n.comp == nil {
		return 0, false, nil
	}

	size, err := n.comp.CompressedSize(src)
	if err != nil {
		return 0, false, fmt.Errorf("compress node %q: %w", n.name, err)
	}

	n.gzipMemo = &size

	return size, true, nil
}
