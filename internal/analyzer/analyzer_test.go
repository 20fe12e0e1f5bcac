package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/parser"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
)

var errStub = errors.New("stub parse failure")

// stubParser serves canned bundles keyed by full path and records the paths
// it was asked for.
type stubParser struct {
	bundles map[string]*parser.Bundle
	asked   []string
}

func (p *stubParser) Parse(path string) (*parser.Bundle, error) {
	p.asked = append(p.asked, path)

	bundle, ok := p.bundles[path]
	if !ok {
		return nil, errStub
	}

	return bundle, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func simpleSnapshot() *stats.Stats {
	return &stats.Stats{
		Assets: []*stats.Asset{
			{Name: "bundle.js", Size: 141, Chunks: []stats.ID{"0"}},
		},
		Modules: []*stats.Module{
			{ID: "1", Name: "./a.js", Size: 50, Chunks: []stats.ID{"0"}},
			{ID: "2", Name: "./b.js", Size: 91, Chunks: []stats.ID{"0"}},
		},
	}
}

func TestChartDataStatsOnly(t *testing.T) {
	t.Parallel()

	a := &Analyzer{Logger: quietLogger()}

	items, err := a.ChartData(context.Background(), simpleSnapshot(), Options{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	require.Equal(t, "bundle.js", item.Label)
	require.True(t, item.IsAsset)
	require.EqualValues(t, 141, item.StatSize)
	require.Nil(t, item.ParsedSize)
	require.Nil(t, item.GzipSize)

	require.Len(t, item.Groups, 2)
	require.Equal(t, "a.js", item.Groups[0].Label)
	require.EqualValues(t, 50, item.Groups[0].StatSize)
	require.Equal(t, "b.js", item.Groups[1].Label)
	require.EqualValues(t, 91, item.Groups[1].StatSize)
}

func TestChartDataEmptySnapshot(t *testing.T) {
	t.Parallel()

	a := &Analyzer{Logger: quietLogger()}

	items, err := a.ChartData(context.Background(), &stats.Stats{}, Options{})
	require.NoError(t, err)
	require.Nil(t, items)
}

func TestChartDataExcludesMatchedAssets(t *testing.T) {
	t.Parallel()

	st := simpleSnapshot()
	st.Assets = append(st.Assets, &stats.Asset{
		Name: "vendor.js", Size: 10, Chunks: []stats.ID{"0"},
	})

	matchers, err := stats.CompileMatchers([]string{`^vendor\.`})
	require.NoError(t, err)

	a := &Analyzer{Logger: quietLogger()}

	items, err := a.ChartData(context.Background(), st, Options{Exclude: matchers})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "bundle.js", items[0].Label)
}

func TestChartDataWithAttributedSources(t *testing.T) {
	t.Parallel()

	stub := &stubParser{bundles: map[string]*parser.Bundle{
		"dist/bundle.js": {
			Src: "var a=1;var b=22;",
			Modules: map[string]string{
				"1": "var a=1;",
				"2": "var b=22;",
			},
		},
	}}

	a := &Analyzer{Logger: quietLogger(), Parser: stub}

	items, err := a.ChartData(context.Background(), simpleSnapshot(), Options{BundleDir: "dist"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	require.NotNil(t, item.ParsedSize)
	require.EqualValues(t, 17, *item.ParsedSize)
	require.NotNil(t, item.GzipSize)

	require.NotNil(t, item.Groups[0].ParsedSize)
	require.EqualValues(t, 8, *item.Groups[0].ParsedSize)
	require.NotNil(t, item.Groups[1].ParsedSize)
	require.EqualValues(t, 9, *item.Groups[1].ParsedSize)

	require.Equal(t, []string{"dist/bundle.js"}, stub.asked)
}

func TestChartDataAllParsesFailedFallsBackToStats(t *testing.T) {
	t.Parallel()

	stub := &stubParser{}
	a := &Analyzer{Logger: quietLogger(), Parser: stub}

	items, err := a.ChartData(context.Background(), simpleSnapshot(), Options{BundleDir: "dist"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Nil(t, items[0].ParsedSize)
	require.Nil(t, items[0].GzipSize)
	require.Len(t, stub.asked, 1)
}

func TestChartDataPartialParseFailure(t *testing.T) {
	t.Parallel()

	st := &stats.Stats{
		Assets: []*stats.Asset{
			{Name: "good.js", Size: 8, Chunks: []stats.ID{"0"}},
			{Name: "bad.js", Size: 9, Chunks: []stats.ID{"1"}},
		},
		Modules: []*stats.Module{
			{ID: "1", Name: "./a.js", Size: 8, Chunks: []stats.ID{"0"}},
			{ID: "2", Name: "./b.js", Size: 9, Chunks: []stats.ID{"1"}},
		},
	}

	stub := &stubParser{bundles: map[string]*parser.Bundle{
		"dist/good.js": {Src: "var a=1;", Modules: map[string]string{"1": "var a=1;"}},
	}}

	a := &Analyzer{Logger: quietLogger(), Parser: stub}

	items, err := a.ChartData(context.Background(), st, Options{BundleDir: "dist"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].ParsedSize, "parsed bundle keeps attributed sizes")
	require.Nil(t, items[1].ParsedSize, "failed bundle degrades to stats-only")
}

func TestChartDataConcatenatedModule(t *testing.T) {
	t.Parallel()

	st := &stats.Stats{
		Assets: []*stats.Asset{
			{Name: "bundle.js", Size: 100, Chunks: []stats.ID{"0"}},
		},
		Modules: []*stats.Module{
			{
				ID: "7", Name: "./combined.js", Size: 100, Chunks: []stats.ID{"0"},
				Modules: []*stats.Module{
					{ID: "8", Name: "./x.js", Size: 40},
					{ID: "9", Name: "./y.js", Size: 60},
				},
			},
		},
	}

	a := &Analyzer{Logger: quietLogger()}

	items, err := a.ChartData(context.Background(), st, Options{})
	require.NoError(t, err)

	concat := items[0].Groups[0]
	require.Equal(t, "combined.js", concat.Label)
	require.EqualValues(t, 100, concat.StatSize)
	require.Len(t, concat.Groups, 2)
	require.Equal(t, "x.js", concat.Groups[0].Label)
	require.Equal(t, "y.js", concat.Groups[1].Label)
}

func TestChartDataChildOnlySnapshot(t *testing.T) {
	t.Parallel()

	st := &stats.Stats{
		Children: []*stats.Stats{
			{
				Assets: []*stats.Asset{
					{Name: "child.js", Size: 30, Chunks: []stats.ID{"0"}},
				},
				Modules: []*stats.Module{
					{ID: "1", Name: "./c.js", Size: 30, Chunks: []stats.ID{"0"}},
				},
			},
		},
	}

	a := &Analyzer{Logger: quietLogger()}

	items, err := a.ChartData(context.Background(), st, Options{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "child.js", items[0].Label)
	require.Len(t, items[0].Groups, 1)
}

func TestModulePathParts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain relative", "./src/a.js", []string{"src", "a.js"}},
		{"loader pipeline", "css-loader!./style/main.css", []string{"style", "main.css"}},
		{"multi entry", "multi ./entry/a.js", []string{"entry", "a.js"}},
		{"query suffix", "./src/a.js?abcd", []string{"src", "a.js"}},
		{"node modules", "./node_modules/lib/index.js", []string{"node_modules", "lib", "index.js"}},
		{"parent segments kept", "../shared/util.js", []string{"..", "shared", "util.js"}},
		{"empty", "", nil},
		{"only dot", "./", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, ModulePathParts(tc.in))
		})
	}
}
