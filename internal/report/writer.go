package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// FormatHTML renders a standalone treemap page.
const FormatHTML = "html"

// FormatJSON emits the chart-data array as indented JSON.
const FormatJSON = "json"

// FormatYAML emits the chart-data array as YAML.
const FormatYAML = "yaml"

// WriteJSON writes the chart data as indented JSON.
func WriteJSON(w io.Writer, items []*ChartItem) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(items)
	if err != nil {
		return fmt.Errorf("encode chart data: %w", err)
	}

	return nil
}

// WriteYAML writes the chart data as YAML.
func WriteYAML(w io.Writer, items []*ChartItem) error {
	enc := yaml.NewEncoder(w)

	err := enc.Encode(items)
	if err != nil {
		return fmt.Errorf("encode chart data: %w", err)
	}

	closeErr := enc.Close()
	if closeErr != nil {
		return fmt.Errorf("flush yaml encoder: %w", closeErr)
	}

	return nil
}
