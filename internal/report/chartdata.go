// Package report projects composition trees into the externally consumed
// chart-data shape and renders it as treemap HTML, JSON, or YAML.
package report

import (
	"log/slog"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/sizes"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/tree"
)

// ChartItem is one node of the chart-data hierarchy. The JSON field set is
// the wire contract consumed by rendering layers and must stay stable
// field-for-field. ParsedSize and GzipSize are omitted (not zeroed) when the
// node has no attributed source.
type ChartItem struct {
	ID         string       `json:"id,omitempty" yaml:"id,omitempty"`
	Label      string       `json:"label" yaml:"label"`
	Path       string       `json:"path,omitempty" yaml:"path,omitempty"`
	IsAsset    bool         `json:"isAsset,omitempty" yaml:"isAsset,omitempty"`
	StatSize   int64        `json:"statSize" yaml:"statSize"`
	ParsedSize *int64       `json:"parsedSize,omitempty" yaml:"parsedSize,omitempty"`
	GzipSize   *int64       `json:"gzipSize,omitempty" yaml:"gzipSize,omitempty"`
	Groups     []*ChartItem `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// AssetSource carries an asset's attributed full bundle source.
type AssetSource struct {
	Src string
	OK  bool
}

// Projector turns finalized composition trees into chart data.
type Projector struct {
	// Compressor measures asset-level compressed sizes. Node-level sizes
	// use the compressor the tree was built with.
	Compressor sizes.Compressor

	// Logger receives per-node compression warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

func (p *Projector) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}

	return slog.Default()
}

// ProjectAsset emits the chart-data record for one asset. The record's
// statSize is the tree aggregate unless the tree is empty, in which case it
// falls back to the asset's declared size. Parsed and compressed sizes come
// from the attributed bundle source when available and are absent otherwise.
func (p *Projector) ProjectAsset(asset *stats.Asset, tr *tree.Tree, src AssetSource) *ChartItem {
	item := &ChartItem{
		Label:    asset.Name,
		IsAsset:  true,
		StatSize: asset.Size,
	}

	if !tr.Empty() {
		item.StatSize = tr.Root().StatSize()
	}

	if src.OK {
		parsed := int64(len(src.Src))
		item.ParsedSize = &parsed

		gzipSize, err := p.Compressor.CompressedSize(src.Src)
		if err != nil {
			p.logger().Warn("asset compressed-size computation failed",
				"asset", asset.Name, "error", err)
		} else {
			item.GzipSize = &gzipSize
		}
	}

	item.Groups = p.projectChildren(tr.Root().Children(), ".")

	return item
}

func (p *Projector) projectChildren(nodes []*tree.Node, parentPath string) []*ChartItem {
	if len(nodes) == 0 {
		return nil
	}

	items := make([]*ChartItem, 0, len(nodes))

	for _, node := range nodes {
		items = append(items, p.projectNode(node, parentPath))
	}

	return items
}

func (p *Projector) projectNode(node *tree.Node, parentPath string) *ChartItem {
	path := parentPath + "/" + node.Name()

	item := &ChartItem{
		ID:       node.ID(),
		Label:    node.Name(),
		Path:     path,
		StatSize: node.StatSize(),
	}

	if parsed, ok := node.ParsedSize(); ok {
		item.ParsedSize = &parsed
	}

	gzipSize, ok, err := node.GzipSize()
	if err != nil {
		// Isolated per-node failure: degrade this node, keep projecting.
		p.logger().Warn("node compressed-size computation failed",
			"path", path, "error", err)
	} else if ok {
		item.GzipSize = &gzipSize
	}

	item.Groups = p.projectChildren(node.Children(), path)

	return item
}
