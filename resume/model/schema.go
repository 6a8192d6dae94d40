package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume.schema.json
var resumeSchema string

var schemaLoader = gojsonschema.NewStringLoader(resumeSchema)

// Schema returns the JSON Schema describing a Document.
func Schema() string {
	return resumeSchema
}

// FieldError represents a single schema violation at a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError reports why a payload does not match the document schema.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	if len(e.Errors) == 0 {
		return "schema validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateJSON checks raw JSON against the document schema: all five top-level
// keys present, each with the right container kind, and string leaves.
func ValidateJSON(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return schemaErr
}

// Decode validates raw JSON against the schema and decodes it into a Document.
func Decode(raw []byte) (Document, error) {
	if err := ValidateJSON(raw); err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc.Normalize(), nil
}
