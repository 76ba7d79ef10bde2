package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Schema is the subset of JSON Schema advertised as a tool input schema.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Description string             `json:"description,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Generate creates a JSON Schema from a Go value.
func Generate(v any) (*Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("schema: cannot generate from nil")
	}
	return GenerateFromType(reflect.TypeOf(v))
}

// GenerateFromType creates a JSON Schema from a reflect.Type.
// Channels, functions and complex numbers have no JSON form and are
// rejected.
func GenerateFromType(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return structSchema(t)
	case reflect.Slice, reflect.Array:
		items, err := GenerateFromType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: typeArray, Items: items}, nil
	case reflect.String:
		return &Schema{Type: typeString}, nil
	case reflect.Bool:
		return &Schema{Type: typeBoolean}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: typeNumber}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: typeInteger}, nil
	case reflect.Map:
		return &Schema{Type: typeObject}, nil
	case reflect.Interface:
		return &Schema{}, nil
	default:
		return nil, fmt.Errorf("schema: unsupported kind %s", t.Kind())
	}
}

func structSchema(t reflect.Type) (*Schema, error) {
	s := &Schema{
		Type:       typeObject,
		Properties: make(map[string]*Schema, t.NumField()),
	}

	for i := range t.NumField() {
		field := t.Field(i)
		name, ok := propertyName(field)
		if !ok {
			continue
		}

		prop, err := GenerateFromType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		opts := parseTag(field.Tag.Get("jsonschema"))
		prop.Description = opts.description
		prop.Enum = opts.enum
		if opts.required {
			s.Required = append(s.Required, name)
		}

		s.Properties[name] = prop
	}

	return s, nil
}

// propertyName returns the JSON name of an exported field, or false when
// the field is not serialised.
func propertyName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return field.Name, true
}

type tagOptions struct {
	required    bool
	description string
	enum        []any
}

// parseTag reads a `jsonschema:"required,description=...,enum=a|b"` tag.
// Descriptions may not contain commas.
func parseTag(tag string) tagOptions {
	var opts tagOptions
	if tag == "" {
		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "required":
			opts.required = true
		case "description":
			opts.description = value
		case "enum":
			for _, v := range strings.Split(value, "|") {
				opts.enum = append(opts.enum, v)
			}
		}
	}
	return opts
}
