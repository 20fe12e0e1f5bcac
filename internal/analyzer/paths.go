package analyzer

import (
	"strings"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
)

// ModulePathParts splits a module's path-like identifier into tree segments.
// Loader-pipeline prefixes ("css-loader!./style.js") keep only the final
// resource, "multi " entry prefixes and "?query" suffixes are stripped, and
// empty or "." segments are dropped. Returns nil when nothing usable
// remains; such modules are skipped at insertion.
func ModulePathParts(name string) []string {
	actual := name

	if idx := strings.LastIndexByte(actual, '!'); idx >= 0 {
		actual = actual[idx+1:]
	}

	actual = strings.TrimPrefix(actual, "multi ")
	actual = stats.StripQuery(actual)

	segments := strings.Split(actual, "/")
	parts := make([]string, 0, len(segments))

	for _, segment := range segments {
		if segment == "" || segment == "." {
			continue
		}

		parts = append(parts, segment)
	}

	if len(parts) == 0 {
		return nil
	}

	return parts
}
