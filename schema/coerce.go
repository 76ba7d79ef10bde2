package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Schema type constants.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Path    string // JSON path to the invalid field (e.g., "user.email")
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks JSON data against the schema.
func (s *Schema) Validate(data json.RawMessage) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %s", err)}
	}
	_, err := s.Coerce(value)
	return err
}

// Coerce checks value against the schema and returns a normalised copy.
//
// Values for "number" and "integer" properties are converted with
// spf13/cast, so numeric strings such as "5" are accepted and come back as
// float64 (or int64). Booleans, null and non-finite results are rejected.
// Unknown object properties are passed through untouched. Enum membership is
// not enforced; callers that advertise an enum own that check.
//
// On failure the returned error is a ValidationErrors listing every problem
// in a deterministic order.
func (s *Schema) Coerce(value any) (any, error) {
	var errs ValidationErrors
	out := s.coerce("", value, &errs)
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (s *Schema) coerce(path string, value any, errs *ValidationErrors) any {
	switch s.Type {
	case typeObject:
		return s.coerceObject(path, value, errs)
	case typeArray:
		return s.coerceArray(path, value, errs)
	case typeString:
		if _, ok := value.(string); !ok {
			*errs = append(*errs, mismatch(path, typeString, value))
		}
		return value
	case typeNumber:
		num, ok := toNumber(value)
		if !ok {
			*errs = append(*errs, mismatch(path, typeNumber, value))
		}
		return num
	case typeInteger:
		num, ok := toNumber(value)
		if !ok || num != math.Trunc(num) {
			*errs = append(*errs, mismatch(path, typeInteger, value))
			return value
		}
		return int64(num)
	case typeBoolean:
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, mismatch(path, typeBoolean, value))
		}
		return value
	default:
		return value
	}
}

func (s *Schema) coerceObject(path string, value any, errs *ValidationErrors) any {
	obj, ok := value.(map[string]any)
	if !ok {
		*errs = append(*errs, mismatch(path, typeObject, value))
		return value
	}

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
		if v, exists := obj[name]; !exists || v == nil {
			*errs = append(*errs, &ValidationError{
				Path:    joinPath(path, name),
				Message: "required field is missing",
			})
		}
	}

	out := make(map[string]any, len(obj))
	for name, val := range obj {
		out[name] = val
	}

	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		val, exists := obj[name]
		if !exists || (val == nil && required[name]) {
			continue
		}
		if val == nil {
			delete(out, name)
			continue
		}
		out[name] = s.Properties[name].coerce(joinPath(path, name), val, errs)
	}

	return out
}

func (s *Schema) coerceArray(path string, value any, errs *ValidationErrors) any {
	items, ok := value.([]any)
	if !ok {
		*errs = append(*errs, mismatch(path, typeArray, value))
		return value
	}
	if s.Items == nil {
		return items
	}

	out := make([]any, len(items))
	for i, item := range items {
		out[i] = s.Items.coerce(fmt.Sprintf("%s[%d]", path, i), item, errs)
	}
	return out
}

// toNumber converts anything number-like to a finite float64.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil, bool, map[string]any, []any:
		return 0, false
	case string:
		value = strings.TrimSpace(v)
		if value == "" {
			return 0, false
		}
	}

	num, err := cast.ToFloat64E(value)
	if err != nil {
		s, ok := value.(string)
		if !ok {
			return 0, false
		}
		return prefixedInteger(s)
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

// prefixedInteger parses unsigned 0x, 0o and 0b literals such as "0x10".
func prefixedInteger(s string) (float64, bool) {
	if len(s) < 3 || s[0] != '0' || strings.Contains(s, "_") {
		return 0, false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
	default:
		return 0, false
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func mismatch(path, want string, value any) *ValidationError {
	got := kindOf(value)
	if s, ok := value.(string); ok && (want == typeNumber || want == typeInteger) {
		got = fmt.Sprintf("non-numeric string %q", s)
	}
	return &ValidationError{
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// kindOf names the JSON kind of a decoded value.
func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return typeBoolean
	case string:
		return typeString
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	case float64, float32, int, int64, int32, json.Number:
		return typeNumber
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
