package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema describes the shape of a blueprint document.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "models"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "models": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "extends": {"type": "string", "minLength": 1},
          "blueprints": {
            "type": "object",
            "propertyNames": {"pattern": "^\\S+$"},
            "additionalProperties": {"type": ["object", "null"]}
          }
        }
      }
    }
  }
}`

// compileDocumentSchema compiles documentSchema.
func compileDocumentSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("blueprints.json", strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("failed to add blueprint document schema: %w", err)
	}
	schema, err := compiler.Compile("blueprints.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile blueprint document schema: %w", err)
	}
	return schema, nil
}

// validateDocument checks a decoded YAML document against the schema.
// The document is round-tripped through JSON so that the validator only
// sees JSON types.
func validateDocument(schema *jsonschema.Schema, raw any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("document is not representable as JSON: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("document is not representable as JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("document validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError flattens a validation error tree.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return fmt.Errorf("document validation failed: %s", err.Message)
	}
	return fmt.Errorf("document validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}
