package stats

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema is an advisory shape check for incoming stats documents.
// It deliberately validates only the fields this package reads; violations
// are logged as warnings and never block analysis.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "assets": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "size": {"type": "number"},
          "chunks": {"type": "array"}
        },
        "required": ["name"]
      }
    },
    "chunks": {"type": "array"},
    "modules": {"type": "array"},
    "children": {"type": "array"},
    "assetsByChunkName": {"type": "object"}
  }
}`

// ValidateSnapshot checks a raw stats document against the advisory schema
// and returns a human-readable description per violation. An empty slice
// means the document is well-shaped.
func ValidateSnapshot(raw []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(snapshotSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate stats document: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))

	for _, resultErr := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", resultErr.Field(), resultErr.Description()))
	}

	return violations, nil
}
