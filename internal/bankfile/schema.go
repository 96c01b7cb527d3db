package bankfile

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// nullable wraps a type name so the field also accepts JSON null.
func nullable(typ string) []any { return []any{typ, "null"} }

// FileSchema describes an importable bank file. Unknown fields are allowed
// so files written by older versions still load.
var FileSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type":  "array",
			"items": questionSchema,
		},
		"groups": map[string]any{
			"type":  nullable("array"),
			"items": groupSchema,
		},
	},
	"required": []any{"questions"},
}

var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question_id":   map[string]any{"type": "string", "minLength": 1},
		"category":      map[string]any{"type": nullable("string")},
		"sub_category":  map[string]any{"type": nullable("string")},
		"subcategory":   map[string]any{"type": nullable("string")},
		"group_id":      map[string]any{"type": nullable("string")},
		"question_text": map[string]any{"type": nullable("string")},
		"choices": map[string]any{
			"type":                 nullable("object"),
			"additionalProperties": map[string]any{"type": "string"},
		},
		"answer": map[string]any{
			"type": nullable("object"),
			"properties": map[string]any{
				"correct_choice": map[string]any{"type": nullable("string")},
				"explanation":    map[string]any{"type": nullable("string")},
			},
		},
		"source": map[string]any{
			"type": nullable("object"),
			"properties": map[string]any{
				"provider":        map[string]any{"type": nullable("string")},
				"year":            map[string]any{"type": []any{"string", "integer", "null"}},
				"exam_name":       map[string]any{"type": nullable("string")},
				"question_number": map[string]any{"type": []any{"string", "integer", "null"}},
			},
		},
		"user_attempts": map[string]any{
			"type":  nullable("array"),
			"items": attemptSchema,
		},
	},
	"required": []any{"question_id"},
}

var attemptSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"attempt_id":         map[string]any{"type": "integer", "minimum": 1},
		"chosen_answer":      map[string]any{"type": nullable("string")},
		"time_submitted":     map[string]any{"type": nullable("string")},
		"time_spent_seconds": map[string]any{"type": nullable("number"), "minimum": 0},
		"notes":              map[string]any{"type": nullable("string")},
	},
	"required": []any{"attempt_id"},
}

var groupSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"group_id":   map[string]any{"type": "string", "minLength": 1},
		"text":       map[string]any{"type": nullable("string")},
		"intro_text": map[string]any{"type": nullable("string")},
		"question_order": map[string]any{
			"type":  nullable("array"),
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []any{"group_id"},
}

const fileSchemaURL = "schema://mbeprep-bank.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledSchema compiles FileSchema on first use.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a parsed JSON value, not Go maps with typed slices.
		defBytes, err := json.Marshal(FileSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(fileSchemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(fileSchemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// validate checks a parsed JSON document against FileSchema.
func validate(parsed any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	return s.Validate(parsed)
}
