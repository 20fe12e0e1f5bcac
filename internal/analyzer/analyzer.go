// Package analyzer runs the full pipeline: a decoded stats snapshot is
// normalized, bundle files are parsed for real module sources when a bundle
// directory is available, per-asset composition trees are assembled, and the
// trees are projected into chart data.
package analyzer

import (
	"context"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/parser"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/report"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/sizes"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/tree"
)

const tracerName = "bundle-analyzer/pipeline"

// Options scopes a single analysis run.
type Options struct {
	// BundleDir is where built bundle files live. Empty disables source
	// attribution; every size then comes from the stats snapshot.
	BundleDir string

	// Exclude drops assets matched by any matcher.
	Exclude []stats.Matcher
}

// Analyzer holds the pipeline's collaborators. The zero value is usable:
// it logs through slog.Default, parses with the JavaScript bundle parser,
// and measures compressed sizes with gzip.
type Analyzer struct {
	Logger     *slog.Logger
	Parser     parser.Parser
	Compressor sizes.Compressor
	Tracer     trace.Tracer
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}

	return slog.Default()
}

func (a *Analyzer) bundleParser() parser.Parser {
	if a.Parser != nil {
		return a.Parser
	}

	return parser.NewJSParser()
}

func (a *Analyzer) compressor() sizes.Compressor {
	if a.Compressor != nil {
		return a.Compressor
	}

	return sizes.Gzip{}
}

func (a *Analyzer) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}

	return otel.Tracer(tracerName)
}

// ChartData runs the pipeline over a decoded stats snapshot and returns one
// chart-data record per retained asset, in retained order. A snapshot with
// no retained assets yields a nil slice and no error.
func (a *Analyzer) ChartData(ctx context.Context, st *stats.Stats, opts Options) ([]*report.ChartItem, error) {
	ctx, span := a.tracer().Start(ctx, "analyzer.ChartData")
	defer span.End()

	working := stats.Normalize(st, stats.NormalizeOptions{
		Exclude: opts.Exclude,
		Logger:  a.logger(),
	})

	span.SetAttributes(attribute.Int("assets.retained", len(working.Assets)))

	if len(working.Assets) == 0 {
		a.logger().Info("no bundle assets retained after filtering")

		return nil, nil
	}

	sources := a.attributeSources(ctx, working.Assets, opts.BundleDir)

	projector := &report.Projector{
		Compressor: a.compressor(),
		Logger:     a.logger(),
	}

	items := make([]*report.ChartItem, 0, len(working.Assets))

	for _, asset := range working.Assets {
		tr := a.assetTree(working, asset, sources.moduleSrcs)

		src := report.AssetSource{}
		if full, ok := sources.assetSrcs[asset.Name]; ok {
			src = report.AssetSource{Src: full, OK: true}
		}

		items = append(items, projector.ProjectAsset(asset, tr, src))
	}

	return items, nil
}

// assetTree builds and finalizes the composition tree for one asset.
func (a *Analyzer) assetTree(st *stats.Stats, asset *stats.Asset, moduleSrcs map[string]string) *tree.Tree {
	tr := tree.New(a.compressor())

	for _, m := range stats.ModulesForAsset(st, asset) {
		tr.Insert(moduleRecord(m, moduleSrcs))
	}

	tr.MergeNestedFolders()

	return tr
}

// moduleRecord converts one stats module, and recursively its concatenated
// members, into an insertable tree record.
func moduleRecord(m *stats.Module, moduleSrcs map[string]string) tree.Record {
	rec := tree.Record{
		ID:   string(m.ID),
		Path: ModulePathParts(m.Name),
		Size: m.Size,
	}

	if src, ok := moduleSrcs[string(m.ID)]; ok {
		rec.Src = src
		rec.HasSrc = true
	}

	for _, member := range m.Modules {
		rec.Members = append(rec.Members, moduleRecord(member, moduleSrcs))
	}

	return rec
}

// attribution is the merged outcome of parsing every asset's bundle file.
// Later bundles overwrite earlier entries on id collision.
type attribution struct {
	assetSrcs  map[string]string
	moduleSrcs map[string]string
}

// attributeSources parses each asset's bundle file under bundleDir. A
// per-asset parse failure downgrades that asset to stats-only sizing; when
// every asset fails the whole run degrades the same way with one warning.
func (a *Analyzer) attributeSources(ctx context.Context, assets []*stats.Asset, bundleDir string) attribution {
	if bundleDir == "" {
		return attribution{}
	}

	_, span := a.tracer().Start(ctx, "analyzer.attributeSources")
	defer span.End()

	att := attribution{
		assetSrcs:  make(map[string]string, len(assets)),
		moduleSrcs: make(map[string]string),
	}

	parsedAny := false

	for _, asset := range assets {
		path := filepath.Join(bundleDir, asset.Name)

		bundle, err := a.bundleParser().Parse(path)
		if err != nil {
			a.logger().Warn("bundle parse failed, using sizes from the stats snapshot",
				"asset", asset.Name, "path", path, "error", err)

			continue
		}

		parsedAny = true
		att.assetSrcs[asset.Name] = bundle.Src

		for id, src := range bundle.Modules {
			att.moduleSrcs[id] = src
		}
	}

	span.SetAttributes(attribute.Int("modules.attributed", len(att.moduleSrcs)))

	if !parsedAny {
		a.logger().Warn("no bundle could be parsed, all sizes come from the stats snapshot",
			"dir", bundleDir)

		return attribution{}
	}

	return att
}
