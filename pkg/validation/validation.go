// Package validation checks decoded request bodies against JSON Schema
// documents. Each request shape the API accepts has one schema,
// compiled on first use and reused for the life of the process.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Error codes reported in validation failures.
const (
	ErrCodeRequired = "required"
	ErrCodeType     = "type"
	ErrCodeRange    = "range"
	ErrCodeFormat   = "format"
	ErrCodeSchema   = "schema"
)

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of validating one request body.
type Result struct {
	Valid  bool          `json:"valid"`
	Errors []*FieldError `json:"errors,omitempty"`
}

// AddError records a failure and marks the result invalid.
func (r *Result) AddError(e *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, e)
}

// Detail flattens the failures into a single human-readable string for
// the API's error detail field.
func (r *Result) Detail() string {
	if r.Valid || len(r.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
		} else {
			parts = append(parts, e.Message)
		}
	}
	return strings.Join(parts, "; ")
}

// Schema validates request bodies against one JSON Schema document.
type Schema struct {
	name     string
	document string

	once     sync.Once
	compiled *jsonschema.Schema
	compileE error
}

// NewSchema builds a lazily compiled schema from an inline JSON Schema
// document. The name is used as the compiler resource URL and in error
// messages.
func NewSchema(name, document string) *Schema {
	return &Schema{name: name, document: document}
}

// Validate checks a decoded body against the schema.
func (s *Schema) Validate(body map[string]any) *Result {
	result := &Result{Valid: true}

	s.once.Do(func() {
		s.compiled, s.compileE = s.compile()
	})
	if s.compileE != nil {
		result.AddError(&FieldError{
			Code:    ErrCodeSchema,
			Message: fmt.Sprintf("schema %q failed to compile: %v", s.name, s.compileE),
		})
		return result
	}

	if err := s.compiled.Validate(normalize(body)); err != nil {
		var ve *jsonschema.ValidationError
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			ve = verr
		}
		if ve != nil {
			collectCauses(ve, result)
		} else {
			result.AddError(&FieldError{Code: ErrCodeSchema, Message: err.Error()})
		}
	}
	return result
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	url := s.name + ".json"
	if err := compiler.AddResource(url, strings.NewReader(s.document)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile(url)
}

// normalize rebuilds the body as plain any values so the schema library
// sees the same types encoding/json produces.
func normalize(body map[string]any) any {
	if body == nil {
		return map[string]any{}
	}
	return body
}

// collectCauses walks the validation error tree and records each leaf
// as a field-scoped failure.
func collectCauses(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(&FieldError{
			Field:   fieldFromPointer(err.InstanceLocation),
			Code:    codeFromKeyword(err.KeywordLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectCauses(cause, result)
	}
}

func fieldFromPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}

func codeFromKeyword(keyword string) string {
	switch {
	case strings.HasSuffix(keyword, "/required"):
		return ErrCodeRequired
	case strings.HasSuffix(keyword, "/type"):
		return ErrCodeType
	case strings.HasSuffix(keyword, "/minimum"), strings.HasSuffix(keyword, "/maximum"),
		strings.HasSuffix(keyword, "/minLength"), strings.HasSuffix(keyword, "/maxLength"):
		return ErrCodeRange
	case strings.HasSuffix(keyword, "/format"):
		return ErrCodeFormat
	default:
		return ErrCodeSchema
	}
}
