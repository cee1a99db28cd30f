package bank

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const testSchemaURL = "schema://proctor-test.json"

const testSchemaJSON = `{
  "type": "object",
  "required": ["name", "correct_answers"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "questions_count": {"type": "integer", "minimum": 1},
    "correct_answers": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "pdf_filename": {"type": "string"},
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["prompt"],
        "properties": {
          "prompt": {"type": "string"},
          "options": {
            "type": "array",
            "minItems": 2,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func testSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(testSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse test schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(testSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(testSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateDocument checks raw test JSON against the schema.
func validateDocument(raw []byte) error {
	schema, err := testSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
