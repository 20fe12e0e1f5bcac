// Package stats models the build tool's bundle-statistics JSON and
// normalizes its quirky shapes into a single coherent asset list.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ID is an opaque module or chunk identifier. Stats files emit both numeric
// and string identifiers; numbers are normalized to their decimal form so
// that 1 and "1" compare equal during deduplication.
type ID string

// UnmarshalJSON accepts string, number, and null identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw any

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("decode id: %w", err)
	}

	switch v := raw.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(v)
	case float64:
		*id = ID(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedIDType, raw)
	}

	return nil
}

// NameList accepts either a single string or an array of strings, both of
// which appear as assetsByChunkName values in the wild.
type NameList []string

// UnmarshalJSON accepts string and []string forms.
func (nl *NameList) UnmarshalJSON(data []byte) error {
	var single string

	if err := json.Unmarshal(data, &single); err == nil {
		*nl = NameList{single}

		return nil
	}

	var many []string

	err := json.Unmarshal(data, &many)
	if err != nil {
		return fmt.Errorf("decode asset name list: %w", err)
	}

	*nl = NameList(many)

	return nil
}

// Asset is one build output file.
type Asset struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Chunks []ID   `json:"chunks"`

	// IsChild marks assets sourced from a nested sub-build rather than
	// the top-level build. Set during normalization, never decoded.
	IsChild bool `json:"-"`
}

// Module is one source module as recorded by the build tool. A module with
// a non-empty Modules list was concatenated by the build tool's optimizer
// and owns its members as a nested sub-tree.
type Module struct {
	ID      ID        `json:"id"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Chunks  []ID      `json:"chunks"`
	Modules []*Module `json:"modules,omitempty"`
}

// Chunk is a build-tool-internal grouping that links assets to modules.
type Chunk struct {
	ID      ID        `json:"id"`
	Names   []string  `json:"names"`
	Files   []string  `json:"files"`
	Modules []*Module `json:"modules,omitempty"`
}

// Stats is one build-stats snapshot. Children carry nested sub-builds of
// the same shape.
type Stats struct {
	Assets            []*Asset            `json:"assets"`
	Chunks            []*Chunk            `json:"chunks"`
	Modules           []*Module           `json:"modules"`
	Children          []*Stats            `json:"children"`
	AssetsByChunkName map[string]NameList `json:"assetsByChunkName"`
}

// Decode reads one stats snapshot from r.
func Decode(r io.Reader) (*Stats, error) {
	var st Stats

	err := json.NewDecoder(r).Decode(&st)
	if err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	return &st, nil
}

// StripQuery removes a trailing "?..." fragment from an asset name.
// Every name comparison in this package happens on the stripped form.
func StripQuery(name string) string {
	if idx := strings.IndexByte(name, '?'); idx >= 0 {
		return name[:idx]
	}

	return name
}
