package stats

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnsupportedIDType indicates a module or chunk id of an unexpected JSON type.
var ErrUnsupportedIDType = errors.New("unsupported id type")

// ErrUnsupportedPattern indicates an exclusion pattern of an unexpected type.
var ErrUnsupportedPattern = errors.New("unsupported exclusion pattern type")

// Matcher decides whether an asset name is excluded from the report.
// Matchers are OR-combined: an asset matched by any of them is dropped.
type Matcher interface {
	Match(assetName string) bool
}

// PatternMatcher excludes assets whose name matches a regular expression.
type PatternMatcher struct {
	re *regexp.Regexp
}

// Match reports whether the asset name matches the pattern.
func (m PatternMatcher) Match(assetName string) bool {
	return m.re.MatchString(assetName)
}

// FuncMatcher excludes assets for which the predicate returns true.
type FuncMatcher func(assetName string) bool

// Match invokes the predicate.
func (m FuncMatcher) Match(assetName string) bool {
	return m(assetName)
}

// NewMatcher builds a Matcher from one of the supported pattern forms:
// a string (compiled as a regular expression, matching the original tool's
// treatment of string patterns), a *regexp.Regexp, or a predicate function.
func NewMatcher(pattern any) (Matcher, error) {
	switch v := pattern.(type) {
	case string:
		re, err := regexp.Compile(v)
		if err != nil {
			return nil, fmt.Errorf("compile exclusion pattern %q: %w", v, err)
		}

		return PatternMatcher{re: re}, nil
	case *regexp.Regexp:
		return PatternMatcher{re: v}, nil
	case func(string) bool:
		return FuncMatcher(v), nil
	case Matcher:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPattern, pattern)
	}
}

// CompileMatchers builds matchers from string patterns, as supplied by
// configuration files and CLI flags.
func CompileMatchers(patterns []string) ([]Matcher, error) {
	matchers := make([]Matcher, 0, len(patterns))

	for _, pattern := range patterns {
		m, err := NewMatcher(pattern)
		if err != nil {
			return nil, err
		}

		matchers = append(matchers, m)
	}

	return matchers, nil
}

func matchesAny(matchers []Matcher, assetName string) bool {
	for _, m := range matchers {
		if m.Match(assetName) {
			return true
		}
	}

	return false
}
