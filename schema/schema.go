// Package schema provides JSON Schema validation for collection documents.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// FieldError describes one violation. Loc is the path to the offending
// value, one element per object key or array index.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (fe FieldError) String() string {
	path := "$"
	if len(fe.Loc) > 0 {
		path += "." + strings.Join(fe.Loc, ".")
	}
	return path + ": " + fe.Msg
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the distinct top-level field names that failed, in order
// of first appearance.
func (e *ValidationError) Fields() []string {
	seen := map[string]bool{}
	var out []string
	for _, fe := range e.Errors {
		if len(fe.Loc) == 0 || seen[fe.Loc[0]] {
			continue
		}
		seen[fe.Loc[0]] = true
		out = append(out, fe.Loc[0])
	}
	return out
}

// Validate checks a document against a JSON Schema (draft-07 subset).
// Returns nil if validation passes or the schema is nil, otherwise a
// *ValidationError carrying every violation.
//
// Supported JSON Schema keywords:
//   - type (string, number, integer, boolean, object, array, null, or a list of these)
//   - properties, required, additionalProperties
//   - items (for arrays)
//   - minimum, maximum, exclusiveMinimum, exclusiveMaximum
//   - minLength, maxLength
//   - minItems, maxItems
//   - enum
//   - format: date-time
func Validate(schema map[string]any, doc map[string]any) error {
	return ValidateValue(schema, doc)
}

// ValidateValue is Validate for a decoded JSON value of any shape.
func ValidateValue(schema map[string]any, value any) error {
	if schema == nil {
		return nil
	}
	v := &validator{}
	v.value(schema, value, nil)
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errs}
}

type validator struct {
	errs []FieldError
}

func (v *validator) add(loc []string, typ, format string, args ...any) {
	v.errs = append(v.errs, FieldError{
		Loc:  append([]string{}, loc...),
		Msg:  fmt.Sprintf(format, args...),
		Type: typ,
	})
}

func child(loc []string, key string) []string {
	out := make([]string, len(loc), len(loc)+1)
	copy(out, loc)
	return append(out, key)
}

func (v *validator) value(schema map[string]any, value any, loc []string) {
	// A type mismatch makes the remaining keywords meaningless.
	if types := typesOf(schema["type"]); len(types) > 0 {
		if !v.checkType(types, value, loc) {
			return
		}
	}
	if value == nil {
		return
	}

	if enumRaw, ok := schema["enum"]; ok {
		if enumList, ok := enumRaw.([]any); ok {
			v.checkEnum(enumList, value, loc)
		}
	}

	switch t := value.(type) {
	case map[string]any:
		v.object(schema, t, loc)
	case []any:
		v.array(schema, t, loc)
	case string:
		v.str(schema, t, loc)
	case float64:
		v.number(schema, t, loc)
	case json.Number:
		f, _ := t.Float64()
		v.number(schema, f, loc)
	}
}

func typesOf(raw any) []string {
	switch t := raw.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (v *validator) checkType(expected []string, value any, loc []string) bool {
	actual := jsonType(value)
	for _, want := range expected {
		if want == actual {
			return true
		}
		// "number" also accepts integer
		if want == "number" && actual == "integer" {
			return true
		}
		// Accept float64 values that are whole numbers
		if want == "integer" && actual == "number" {
			if f, ok := toFloat(value); ok && f == float64(int64(f)) {
				return true
			}
		}
	}
	if actual == "null" {
		v.add(loc, "type_error.none.not_allowed", "none is not an allowed value")
		return false
	}
	want := strings.Join(expected, " or ")
	v.add(loc, "type_error."+expected[0], "expected type %q, got %q", want, actual)
	return false
}

func jsonType(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case json.Number:
		return "number"
	case int, int64:
		return "integer"
	default:
		return reflect.TypeOf(v).String()
	}
}

func (v *validator) checkEnum(allowed []any, value any, loc []string) {
	for _, a := range allowed {
		if reflect.DeepEqual(a, value) {
			return
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = fmt.Sprint(a)
	}
	v.add(loc, "enum", "value is not one of: %s", strings.Join(names, ", "))
}

func (v *validator) object(schema map[string]any, obj map[string]any, loc []string) {
	// Check required fields
	if req, ok := schema["required"]; ok {
		for _, field := range stringList(req) {
			if _, exists := obj[field]; !exists {
				v.add(child(loc, field), "missing", "field required")
			}
		}
	}

	// Validate properties
	propsMap, _ := schema["properties"].(map[string]any)
	fields := make([]string, 0, len(propsMap))
	for field := range propsMap {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		val, exists := obj[field]
		if !exists {
			continue
		}
		ps, ok := propsMap[field].(map[string]any)
		if !ok {
			continue
		}
		v.value(ps, val, child(loc, field))
	}

	// Check additionalProperties
	if ap, ok := schema["additionalProperties"]; ok {
		if apBool, ok := ap.(bool); ok && !apBool {
			var extra []string
			for field := range obj {
				if _, defined := propsMap[field]; !defined {
					extra = append(extra, field)
				}
			}
			sort.Strings(extra)
			for _, field := range extra {
				v.add(child(loc, field), "extra", "additional property not allowed")
			}
		}
	}
}

func stringList(raw any) []string {
	switch t := raw.(type) {
	case []string:
		return t
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (v *validator) array(schema map[string]any, arr []any, loc []string) {
	if n, ok := toFloat(schema["minItems"]); ok && float64(len(arr)) < n {
		v.add(loc, "min_items", "array length %d is less than minItems %v", len(arr), n)
	}
	if n, ok := toFloat(schema["maxItems"]); ok && float64(len(arr)) > n {
		v.add(loc, "max_items", "array length %d is greater than maxItems %v", len(arr), n)
	}
	if itemSchema, ok := schema["items"].(map[string]any); ok {
		for i, elem := range arr {
			v.value(itemSchema, elem, child(loc, strconv.Itoa(i)))
		}
	}
}

func (v *validator) str(schema map[string]any, s string, loc []string) {
	if n, ok := toFloat(schema["minLength"]); ok && float64(len(s)) < n {
		v.add(loc, "min_length", "string length %d is less than minLength %v", len(s), n)
	}
	if n, ok := toFloat(schema["maxLength"]); ok && float64(len(s)) > n {
		v.add(loc, "max_length", "string length %d is greater than maxLength %v", len(s), n)
	}
	if format, _ := schema["format"].(string); format == "date-time" {
		if _, err := ParseTime(s); err != nil {
			v.add(loc, "value_error.datetime", "invalid datetime format")
		}
	}
}

func (v *validator) number(schema map[string]any, n float64, loc []string) {
	if m, ok := toFloat(schema["minimum"]); ok && n < m {
		v.add(loc, "minimum", "%v is less than minimum %v", n, m)
	}
	if m, ok := toFloat(schema["maximum"]); ok && n > m {
		v.add(loc, "maximum", "%v is greater than maximum %v", n, m)
	}
	if m, ok := toFloat(schema["exclusiveMinimum"]); ok && n <= m {
		v.add(loc, "exclusive_minimum", "%v is not greater than exclusiveMinimum %v", n, m)
	}
	if m, ok := toFloat(schema["exclusiveMaximum"]); ok && n >= m {
		v.add(loc, "exclusive_maximum", "%v is not less than exclusiveMaximum %v", n, m)
	}
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
