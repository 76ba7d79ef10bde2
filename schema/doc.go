// Package schema generates JSON Schema from Go types and converts untyped
// argument bags into values that match a schema.
//
// # Generation
//
//	type CalculateInput struct {
//	    Operation string  `json:"operation" jsonschema:"required,enum=add|subtract"`
//	    A         float64 `json:"a" jsonschema:"required,description=First number"`
//	}
//
//	s, err := schema.Generate(CalculateInput{})
//
// Struct tags:
//
//   - json:"name" sets the property name, json:"-" excludes the field
//   - jsonschema:"required" marks the property as required
//   - jsonschema:"description=..." adds a description (no commas)
//   - jsonschema:"enum=a|b|c" advertises the allowed string values
//
// # Coercion
//
// Coerce walks a decoded JSON value against the schema, reports every
// violation as a ValidationError with a dotted path, and returns a copy in
// which number-like values (including numeric strings) have become float64:
//
//	out, err := s.Coerce(map[string]any{"operation": "add", "a": "5"})
//	// out["a"] == 5.0
package schema
