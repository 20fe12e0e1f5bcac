package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const statsFixture = `{
	"assets": [
		{"name": "bundle.js", "size": 141, "chunks": [0]},
		{"name": "vendor.js", "size": 10, "chunks": [1]}
	],
	"modules": [
		{"id": 1, "name": "./a.js", "size": 50, "chunks": [0]},
		{"id": 2, "name": "./b.js", "size": 91, "chunks": [0]},
		{"id": 3, "name": "./v.js", "size": 10, "chunks": [1]}
	]
}`

func writeStatsFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte(statsFixture), 0o600))

	return path
}

func TestAnalyzeJSONToStdout(t *testing.T) {
	path := writeStatsFixture(t)

	cmd := NewAnalyzeCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--format", "json"})

	require.NoError(t, cmd.Execute())

	payload := out.String()
	require.Contains(t, payload, `"label": "bundle.js"`)
	require.Contains(t, payload, `"statSize": 141`)
	require.Contains(t, payload, `"label": "vendor.js"`)
	require.NotContains(t, payload, `"parsedSize"`, "no bundle dir, no parsed sizes")
}

func TestAnalyzeExcludeFlag(t *testing.T) {
	path := writeStatsFixture(t)

	cmd := NewAnalyzeCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--format", "json", "--exclude", `^vendor\.`})

	require.NoError(t, cmd.Execute())

	require.Contains(t, out.String(), "bundle.js")
	require.NotContains(t, out.String(), "vendor.js")
}

func TestAnalyzeWritesReportFile(t *testing.T) {
	path := writeStatsFixture(t)
	outPath := filepath.Join(t.TempDir(), "report.html")

	cmd := NewAnalyzeCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--output", outPath, "--title", "My Report"})

	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "My Report")

	require.Contains(t, out.String(), "bundle.js", "summary table goes to stdout")
}

func TestAnalyzeEmptyResultPrintsNotice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"assets": []}`), 0o600))

	cmd := NewAnalyzeCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--format", "json"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "No bundle assets")
}

func TestAnalyzeRejectsInvalidFormat(t *testing.T) {
	path := writeStatsFixture(t)

	cmd := NewAnalyzeCommand()
	cmd.SetArgs([]string{path, "--format", "xml"})

	require.Error(t, cmd.Execute())
}

func TestAnalyzeRejectsInvalidCompression(t *testing.T) {
	path := writeStatsFixture(t)

	cmd := NewAnalyzeCommand()
	cmd.SetArgs([]string{path, "--compression", "zstd"})

	require.Error(t, cmd.Execute())
}

func TestAnalyzeMissingStatsFile(t *testing.T) {
	cmd := NewAnalyzeCommand()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.json"), "--format", "json"})

	require.Error(t, cmd.Execute())
}

func TestAnalyzeLZ4Compression(t *testing.T) {
	path := writeStatsFixture(t)

	cmd := NewAnalyzeCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--format", "json", "--compression", "lz4"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "bundle.js")
}
