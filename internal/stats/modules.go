package stats

// modulePool returns every module reachable from the snapshot: the modules
// of every chunk followed by the top-level module list, deduplicated by id
// with the first occurrence winning. Order is otherwise preserved.
func (s *Stats) modulePool() []*Module {
	seen := make(map[ID]struct{})
	pool := make([]*Module, 0, len(s.Modules))

	add := func(m *Module) {
		if _, ok := seen[m.ID]; ok {
			return
		}

		seen[m.ID] = struct{}{}
		pool = append(pool, m)
	}

	for _, chunk := range s.Chunks {
		for _, m := range chunk.Modules {
			add(m)
		}
	}

	for _, m := range s.Modules {
		add(m)
	}

	return pool
}

// ModulesForAsset returns the deduplicated modules belonging to the asset,
// in pool order. A module belongs to the asset when its chunk set intersects
// the asset's chunk set.
//
// Child-flagged assets are matched against the sub-build whose
// assetsByChunkName references them; when no sub-build does, the asset
// contributes zero modules and is reported with stats-only sizes.
func ModulesForAsset(st *Stats, asset *Asset) []*Module {
	source := st

	if asset.IsChild {
		source = childStatsForAsset(st, asset.Name)
		if source == nil {
			return nil
		}
	}

	assetChunks := make(map[ID]struct{}, len(asset.Chunks))
	for _, id := range asset.Chunks {
		assetChunks[id] = struct{}{}
	}

	var matched []*Module

	for _, m := range source.modulePool() {
		if chunksIntersect(assetChunks, m.Chunks) {
			matched = append(matched, m)
		}
	}

	return matched
}

func chunksIntersect(set map[ID]struct{}, chunks []ID) bool {
	for _, id := range chunks {
		if _, ok := set[id]; ok {
			return true
		}
	}

	return false
}

// childStatsForAsset locates the sub-build whose assetsByChunkName maps any
// chunk name to the given asset name. Names are compared with query suffixes
// stripped, matching the asset-name normalization.
func childStatsForAsset(st *Stats, assetName string) *Stats {
	for _, child := range st.Children {
		for _, names := range child.AssetsByChunkName {
			for _, name := range names {
				if StripQuery(name) == assetName {
					return child
				}
			}
		}
	}

	return nil
}
