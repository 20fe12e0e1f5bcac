package stats

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// bundleExtensions is the set of output-file extensions retained for analysis.
var bundleExtensions = map[string]struct{}{
	".js":  {},
	".mjs": {},
	".gz":  {},
	".br":  {},
}

// NormalizeOptions controls asset filtering during normalization.
type NormalizeOptions struct {
	// Exclude drops assets matched by any matcher.
	Exclude []Matcher

	// Logger receives per-asset debug detail. Defaults to slog.Default().
	Logger *slog.Logger
}

// Normalize repairs the three stats shapes seen in the wild (content at the
// top level, content distributed across children, or both) into one snapshot
// with a flat asset list, then applies name normalization and filtering.
//
// Children-only snapshots adopt the first child as the working object; assets
// of every later child are appended flagged IsChild. Mixed snapshots keep the
// top-level assets unflagged and append every child's assets flagged.
//
// An empty retained asset list is "nothing to report", not an error.
func Normalize(st *Stats, opts NormalizeOptions) *Stats {
	if st == nil {
		return &Stats{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	working := flattenChildren(st)

	retained := make([]*Asset, 0, len(working.Assets))
	indexByName := make(map[string]int, len(working.Assets))

	for _, asset := range working.Assets {
		asset.Name = StripQuery(asset.Name)

		if !hasBundleExtension(asset.Name) {
			continue
		}

		if len(asset.Chunks) == 0 {
			continue
		}

		if matchesAny(opts.Exclude, asset.Name) {
			logger.Debug("asset excluded", "asset", asset.Name)

			continue
		}

		// Names must be unique in the retained list. A later asset with the
		// same stripped name replaces the earlier one in place, keeping the
		// first occurrence's position.
		if at, ok := indexByName[asset.Name]; ok {
			logger.Debug("duplicate asset name, keeping later entry", "asset", asset.Name)

			retained[at] = asset

			continue
		}

		indexByName[asset.Name] = len(retained)
		retained = append(retained, asset)
	}

	working.Assets = retained

	return working
}

// flattenChildren folds child sub-builds into one working snapshot.
// The full child list is kept on the working object so that child-flagged
// assets can later be matched against their own sub-build's module data.
func flattenChildren(st *Stats) *Stats {
	if len(st.Children) == 0 {
		return st
	}

	if len(st.Assets) == 0 {
		first := st.Children[0]

		working := &Stats{
			Assets:            append([]*Asset(nil), first.Assets...),
			Chunks:            first.Chunks,
			Modules:           first.Modules,
			AssetsByChunkName: first.AssetsByChunkName,
			Children:          st.Children,
		}

		for _, child := range st.Children[1:] {
			working.Assets = appendChildAssets(working.Assets, child)
		}

		return working
	}

	working := &Stats{
		Assets:            append([]*Asset(nil), st.Assets...),
		Chunks:            st.Chunks,
		Modules:           st.Modules,
		AssetsByChunkName: st.AssetsByChunkName,
		Children:          st.Children,
	}

	for _, child := range st.Children {
		working.Assets = appendChildAssets(working.Assets, child)
	}

	return working
}

func appendChildAssets(assets []*Asset, child *Stats) []*Asset {
	for _, asset := range child.Assets {
		asset.IsChild = true
		assets = append(assets, asset)
	}

	return assets
}

func hasBundleExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))

	_, ok := bundleExtensions[ext]

	return ok
}
