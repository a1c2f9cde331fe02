// Package schema declares output schemas for structured inference calls.
// A Spec both instructs the model (rendered as JSON Schema on the request)
// and strictly validates the response. Validation never coerces: a value
// that does not match the declared shape is rejected.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

type FieldType string

const (
	TypeString     FieldType = "string"
	TypeBool       FieldType = "boolean"
	TypeNumber     FieldType = "number"
	TypeUnit       FieldType = "unit"
	TypeInteger    FieldType = "integer"
	TypeEnum       FieldType = "enum"
	TypeStringList FieldType = "string_list"
	TypeObject     FieldType = "object"
)

type Field struct {
	Name        string
	Type        FieldType
	Description string
	Enum        []string
	Fields      []Field
	Optional    bool
}

type Spec struct {
	Name        string
	Description string
	Fields      []Field
}

// Validate reports whether the spec itself is fully specified: every field
// needs a type and a human-readable description.
func (s *Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schema name is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %q has no fields", s.Name)
	}
	return validateFields(s.Name, s.Fields)
}

func validateFields(schemaName string, fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("schema %q: field without a name", schemaName)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema %q: duplicate field %q", schemaName, f.Name)
		}
		seen[f.Name] = struct{}{}

		if strings.TrimSpace(f.Description) == "" {
			return fmt.Errorf("schema %q: field %q has no description", schemaName, f.Name)
		}

		switch f.Type {
		case TypeString, TypeBool, TypeNumber, TypeUnit, TypeInteger, TypeStringList:
		case TypeEnum:
			if len(f.Enum) == 0 {
				return fmt.Errorf("schema %q: enum field %q has no values", schemaName, f.Name)
			}
		case TypeObject:
			if len(f.Fields) == 0 {
				return fmt.Errorf("schema %q: object field %q has no fields", schemaName, f.Name)
			}
			if err := validateFields(schemaName, f.Fields); err != nil {
				return err
			}
		default:
			return fmt.Errorf("schema %q: field %q has unknown type %q", schemaName, f.Name, f.Type)
		}
	}
	return nil
}

// JSONSchema renders the spec as a strict JSON Schema object suitable for a
// chat-completions response_format parameter.
func (s *Spec) JSONSchema() map[string]any {
	return objectSchema(s.Description, s.Fields)
}

func objectSchema(description string, fields []Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))

	for _, f := range fields {
		properties[f.Name] = fieldSchema(f)
		if !f.Optional {
			required = append(required, f.Name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
	if description != "" {
		schema["description"] = description
	}
	return schema
}

func fieldSchema(f Field) map[string]any {
	switch f.Type {
	case TypeBool:
		return map[string]any{"type": "boolean", "description": f.Description}
	case TypeNumber:
		return map[string]any{"type": "number", "description": f.Description}
	case TypeUnit:
		return map[string]any{
			"type":        "number",
			"description": f.Description,
			"minimum":     0,
			"maximum":     1,
		}
	case TypeInteger:
		return map[string]any{"type": "integer", "description": f.Description}
	case TypeEnum:
		return map[string]any{
			"type":        "string",
			"description": f.Description,
			"enum":        f.Enum,
		}
	case TypeStringList:
		return map[string]any{
			"type":        "array",
			"description": f.Description,
			"items":       map[string]any{"type": "string"},
		}
	case TypeObject:
		return objectSchema(f.Description, f.Fields)
	default:
		return map[string]any{"type": "string", "description": f.Description}
	}
}

// Check strictly validates a raw JSON payload against the spec. Required
// fields must be present, types must match exactly, enum values must be
// members, unit values must lie in [0, 1], and unknown fields are rejected.
func (s *Spec) Check(raw []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("schema %q: invalid JSON: %w", s.Name, err)
	}

	object, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("schema %q: payload is not a JSON object", s.Name)
	}

	return checkObject(s.Name, "", s.Fields, object)
}

func checkObject(schemaName, path string, fields []Field, object map[string]any) error {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	for key := range object {
		if _, known := byName[key]; !known {
			return fmt.Errorf("schema %q: unknown field %q", schemaName, joinPath(path, key))
		}
	}

	for _, f := range fields {
		fieldPath := joinPath(path, f.Name)
		value, present := object[f.Name]
		if !present {
			if f.Optional {
				continue
			}
			return fmt.Errorf("schema %q: missing required field %q", schemaName, fieldPath)
		}
		if value == nil {
			if f.Optional {
				continue
			}
			return fmt.Errorf("schema %q: field %q is null", schemaName, fieldPath)
		}
		if err := checkValue(schemaName, fieldPath, f, value); err != nil {
			return err
		}
	}

	return nil
}

func checkValue(schemaName, path string, f Field, value any) error {
	switch f.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return typeMismatch(schemaName, path, "string", value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return typeMismatch(schemaName, path, "boolean", value)
		}
	case TypeNumber:
		if _, err := numberValue(value); err != nil {
			return typeMismatch(schemaName, path, "number", value)
		}
	case TypeUnit:
		n, err := numberValue(value)
		if err != nil {
			return typeMismatch(schemaName, path, "number", value)
		}
		if n < 0 || n > 1 {
			return fmt.Errorf("schema %q: field %q value %v outside [0, 1]", schemaName, path, n)
		}
	case TypeInteger:
		num, ok := value.(json.Number)
		if !ok {
			return typeMismatch(schemaName, path, "integer", value)
		}
		if _, err := num.Int64(); err != nil {
			return fmt.Errorf("schema %q: field %q value %s is not an integer", schemaName, path, num)
		}
	case TypeEnum:
		str, ok := value.(string)
		if !ok {
			return typeMismatch(schemaName, path, "string", value)
		}
		for _, allowed := range f.Enum {
			if str == allowed {
				return nil
			}
		}
		return fmt.Errorf("schema %q: field %q value %q not in enum %v", schemaName, path, str, f.Enum)
	case TypeStringList:
		items, ok := value.([]any)
		if !ok {
			return typeMismatch(schemaName, path, "array", value)
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("schema %q: field %q item %d is not a string", schemaName, path, i)
			}
		}
	case TypeObject:
		object, ok := value.(map[string]any)
		if !ok {
			return typeMismatch(schemaName, path, "object", value)
		}
		return checkObject(schemaName, path, f.Fields, object)
	}
	return nil
}

func numberValue(value any) (float64, error) {
	num, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("not a number")
	}
	return num.Float64()
}

func typeMismatch(schemaName, path, expected string, value any) error {
	return fmt.Errorf("schema %q: field %q expected %s, got %T", schemaName, path, expected, value)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
