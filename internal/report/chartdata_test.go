package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/sizes"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/tree"
)

func buildTree(t *testing.T, records ...tree.Record) *tree.Tree {
	t.Helper()

	tr := tree.New(sizes.Gzip{})
	for _, rec := range records {
		tr.Insert(rec)
	}

	tr.MergeNestedFolders()

	return tr
}

func TestProjectAssetStatOnly(t *testing.T) {
	t.Parallel()

	asset := &stats.Asset{Name: "bundle.js", Size: 141, Chunks: []stats.ID{"0"}}
	tr := buildTree(t,
		tree.Record{ID: "1", Path: []string{"a.js"}, Size: 50},
		tree.Record{ID: "2", Path: []string{"b.js"}, Size: 91},
	)

	projector := &Projector{Compressor: sizes.Gzip{}}
	item := projector.ProjectAsset(asset, tr, AssetSource{})

	require.Equal(t, "bundle.js", item.Label)
	require.True(t, item.IsAsset)
	require.EqualValues(t, 141, item.StatSize)
	require.Nil(t, item.ParsedSize, "parsedSize must be absent without bundle source")
	require.Nil(t, item.GzipSize, "gzipSize must be absent without bundle source")

	require.Len(t, item.Groups, 2)
	require.EqualValues(t, 50, item.Groups[0].StatSize)
	require.EqualValues(t, 91, item.Groups[1].StatSize)
}

func TestProjectAssetEmptyTreeFallsBackToDeclaredSize(t *testing.T) {
	t.Parallel()

	asset := &stats.Asset{Name: "bundle.js", Size: 777, Chunks: []stats.ID{"0"}}
	tr := tree.New(sizes.Gzip{})

	projector := &Projector{Compressor: sizes.Gzip{}}
	item := projector.ProjectAsset(asset, tr, AssetSource{})

	require.EqualValues(t, 777, item.StatSize)
	require.Empty(t, item.Groups)
}

func TestProjectAssetWithAttributedSource(t *testing.T) {
	t.Parallel()

	asset := &stats.Asset{Name: "bundle.js", Size: 141, Chunks: []stats.ID{"0"}}
	tr := buildTree(t,
		tree.Record{ID: "1", Path: []string{"a.js"}, Size: 50, Src: "var a=1;", HasSrc: true},
	)

	projector := &Projector{Compressor: sizes.Gzip{}}
	item := projector.ProjectAsset(asset, tr, AssetSource{Src: "var a=1;var b=2;", OK: true})

	require.NotNil(t, item.ParsedSize)
	require.EqualValues(t, 16, *item.ParsedSize)
	require.NotNil(t, item.GzipSize)
	require.Positive(t, *item.GzipSize)

	leaf := item.Groups[0]
	require.NotNil(t, leaf.ParsedSize)
	require.EqualValues(t, 8, *leaf.ParsedSize)
	require.NotNil(t, leaf.GzipSize)
}

func TestProjectAssetPathsAndOrdering(t *testing.T) {
	t.Parallel()

	asset := &stats.Asset{Name: "bundle.js", Size: 10, Chunks: []stats.ID{"0"}}
	tr := buildTree(t,
		tree.Record{ID: "2", Path: []string{"src", "z.js"}, Size: 4},
		tree.Record{ID: "1", Path: []string{"src", "a.js"}, Size: 6},
	)

	projector := &Projector{Compressor: sizes.Gzip{}}
	item := projector.ProjectAsset(asset, tr, AssetSource{})

	require.Len(t, item.Groups, 1)

	folder := item.Groups[0]
	require.Equal(t, "src", folder.Label)
	require.Equal(t, "./src", folder.Path)
	require.False(t, folder.IsAsset)

	// Insertion order, not alphabetical.
	require.Equal(t, "z.js", folder.Groups[0].Label)
	require.Equal(t, "./src/z.js", folder.Groups[0].Path)
	require.Equal(t, "a.js", folder.Groups[1].Label)
}

func TestProjectConcatenatedModuleGroups(t *testing.T) {
	t.Parallel()

	asset := &stats.Asset{Name: "bundle.js", Size: 100, Chunks: []stats.ID{"0"}}
	tr := buildTree(t, tree.Record{
		ID:   "5",
		Path: []string{"combined.js"},
		Size: 100,
		Members: []tree.Record{
			{ID: "3", Path: []string{"x.js"}, Size: 10},
		},
	})

	projector := &Projector{Compressor: sizes.Gzip{}}
	item := projector.ProjectAsset(asset, tr, AssetSource{})

	concat := item.Groups[0]
	require.Equal(t, "combined.js", concat.Label)
	require.Len(t, concat.Groups, 1)
	require.Equal(t, "x.js", concat.Groups[0].Label)
	require.EqualValues(t, 10, concat.Groups[0].StatSize)
}

func TestProjectionIsIdempotent(t *testing.T) {
	t.Parallel()

	asset := &stats.Asset{Name: "bundle.js", Size: 141, Chunks: []stats.ID{"0"}}
	tr := buildTree(t,
		tree.Record{ID: "1", Path: []string{"a.js"}, Size: 50, Src: "var a=1;", HasSrc: true},
	)

	projector := &Projector{Compressor: sizes.Gzip{}}

	first := projector.ProjectAsset(asset, tr, AssetSource{Src: "var a=1;", OK: true})
	second := projector.ProjectAsset(asset, tr, AssetSource{Src: "var a=1;", OK: true})

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	require.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestChartItemWireShape(t *testing.T) {
	t.Parallel()

	parsed := int64(5)
	item := &ChartItem{
		Label:      "bundle.js",
		IsAsset:    true,
		StatSize:   141,
		ParsedSize: &parsed,
		Groups: []*ChartItem{
			{ID: "1", Label: "a.js", Path: "./a.js", StatSize: 50},
		},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	payload := string(data)
	require.Contains(t, payload, `"label":"bundle.js"`)
	require.Contains(t, payload, `"isAsset":true`)
	require.Contains(t, payload, `"statSize":141`)
	require.Contains(t, payload, `"parsedSize":5`)
	require.NotContains(t, payload, `"gzipSize"`, "absent metrics are omitted, not zeroed")
	require.Contains(t, payload, `"path":"./a.js"`)
	require.NotContains(t, payload, `"isAsset":false`)
}

func TestWriters(t *testing.T) {
	t.Parallel()

	items := []*ChartItem{{Label: "bundle.js", IsAsset: true, StatSize: 141}}

	var jsonBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, items))
	require.Contains(t, jsonBuf.String(), `"bundle.js"`)

	var yamlBuf bytes.Buffer
	require.NoError(t, WriteYAML(&yamlBuf, items))
	require.Contains(t, yamlBuf.String(), "label: bundle.js")
	require.Contains(t, yamlBuf.String(), "statSize: 141")
}

func TestRenderHTMLIncludesAvailableMetricSections(t *testing.T) {
	t.Parallel()

	parsed := int64(10)
	items := []*ChartItem{{Label: "bundle.js", IsAsset: true, StatSize: 141, ParsedSize: &parsed}}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, items, "Bundle Report"))

	html := buf.String()
	require.Contains(t, html, "Bundle Report")
	require.Contains(t, html, "Declared Size")
	require.Contains(t, html, "Parsed Size")
	require.NotContains(t, html, "Compressed Size", "gzip section omitted when no data")
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	items := []*ChartItem{
		{Label: "bundle.js", IsAsset: true, StatSize: 141, Groups: []*ChartItem{
			{ID: "1", Label: "a.js", StatSize: 50},
			{ID: "2", Label: "b.js", StatSize: 91},
		}},
	}

	var buf strings.Builder
	WriteSummary(&buf, items)

	out := buf.String()
	require.Contains(t, out, "bundle.js")
	require.Contains(t, out, "141 B")
	require.Contains(t, out, "1 assets")
}

func TestHasMetric(t *testing.T) {
	t.Parallel()

	gz := int64(3)
	items := []*ChartItem{
		{Label: "a.js", StatSize: 1},
		{Label: "b.js", StatSize: 2, GzipSize: &gz},
	}

	require.True(t, HasMetric(items, MetricStat))
	require.False(t, HasMetric(items, MetricParsed))
	require.True(t, HasMetric(items, MetricGzip))
}
