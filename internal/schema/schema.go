// Package schema validates untrusted JSON payloads from the PriceTracker API
// and coerces them into model values.
//
// Each schema pairs a wire struct, whose pointer fields carry `validate`
// constraints, with a transform into the model type. Nothing reaches the
// model types without passing the constraints first.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names in issue paths
	v.RegisterTagNameFunc(jsonName)

	mustRegister(v, "isodatetime", func(fl validator.FieldLevel) bool {
		_, err := ParseDateTime(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "anydate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	// Canonical 8-4-4-4-12 form in either case
	mustRegister(v, "anyuuid", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schema: register %s: %v", tag, err))
	}
}

// Result is the outcome of SafeParse: either a value or a validation error.
type Result[T any] struct {
	Value T
	Err   *ValidationError
}

// Success reports whether validation passed
func (r Result[T]) Success() bool {
	return r.Err == nil
}

// Schema validates wire payloads of shape W and transforms them into T.
type Schema[W any, T any] struct {
	name      string
	transform func(w *W) (T, error)
}

func newSchema[W any, T any](name string, transform func(w *W) (T, error)) *Schema[W, T] {
	return &Schema[W, T]{name: name, transform: transform}
}

// Name returns the schema name used in error messages
func (s *Schema[W, T]) Name() string {
	return s.name
}

// Parse decodes raw JSON, validates it and returns the transformed value.
// Shape failures are returned as *ValidationError listing every offending
// path.
func (s *Schema[W, T]) Parse(raw []byte) (T, error) {
	var zero T

	var w W
	if issues := validateWire(raw, &w, ""); len(issues) > 0 {
		return zero, s.fail(issues...)
	}
	return s.apply(&w, "")
}

// SafeParse is Parse with the failure carried in the result.
func (s *Schema[W, T]) SafeParse(raw []byte) Result[T] {
	v, err := s.Parse(raw)
	return s.result(v, err)
}

// ParseValue validates an already decoded JSON value such as a
// map[string]any.
func (s *Schema[W, T]) ParseValue(v any) (T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		var zero T
		return zero, s.fail(Issue{Message: fmt.Sprintf("value is not JSON encodable: %v", err)})
	}
	return s.Parse(raw)
}

// ParseList decodes a JSON array where every element must satisfy the
// schema. Issue paths carry the element index.
func (s *Schema[W, T]) ParseList(raw []byte) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, s.fail(decodeIssue(err, ""))
	}
	if items == nil {
		return nil, s.fail(Issue{Message: "expected array, got null"})
	}

	ws := make([]W, len(items))
	var issues []Issue
	for i := range items {
		issues = append(issues, validateWire(items[i], &ws[i], fmt.Sprintf("[%d]", i))...)
	}
	if len(issues) > 0 {
		return nil, s.fail(issues...)
	}

	out := make([]T, 0, len(ws))
	for i := range ws {
		v, err := s.apply(&ws[i], fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// SafeParseList is ParseList with the failure carried in the result.
func (s *Schema[W, T]) SafeParseList(raw []byte) Result[[]T] {
	v, err := s.ParseList(raw)
	if err != nil {
		return Result[[]T]{Err: asValidationError(s.name, err)}
	}
	return Result[[]T]{Value: v}
}

func (s *Schema[W, T]) result(v T, err error) Result[T] {
	if err != nil {
		return Result[T]{Err: asValidationError(s.name, err)}
	}
	return Result[T]{Value: v}
}

func (s *Schema[W, T]) apply(w *W, prefix string) (T, error) {
	v, err := s.transform(w)
	if err != nil {
		var zero T
		return zero, s.fail(Issue{Path: prefix, Message: err.Error()})
	}
	return v, nil
}

func (s *Schema[W, T]) fail(issues ...Issue) *ValidationError {
	return &ValidationError{Schema: s.name, Issues: issues}
}

// validateWire decodes raw into w and checks its constraints. Decoding goes
// field by field so a wrongly typed field does not hide the others.
func validateWire(raw []byte, w any, prefix string) []Issue {
	decoded := decodeValue(raw, reflect.ValueOf(w).Elem(), prefix)
	for _, issue := range decoded {
		if issue.Path == prefix {
			return decoded
		}
	}

	issues := decoded
	for _, issue := range check(w, prefix) {
		if !covered(issue.Path, decoded) {
			issues = append(issues, issue)
		}
	}
	return issues
}

// covered reports whether path is, or lies below, a path that already
// failed to decode.
func covered(path string, decoded []Issue) bool {
	for _, d := range decoded {
		if path == d.Path || strings.HasPrefix(path, d.Path+".") || strings.HasPrefix(path, d.Path+"[") {
			return true
		}
	}
	return false
}

func decodeValue(raw []byte, v reflect.Value, path string) []Issue {
	t := v.Type()
	switch {
	case t.Kind() == reflect.Struct:
		return decodeObject(raw, v, path)

	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		if isNull(raw) {
			v.Set(reflect.Zero(t))
			return nil
		}
		elem := reflect.New(t.Elem())
		issues := decodeObject(raw, elem.Elem(), path)
		v.Set(elem)
		return issues

	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Struct:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return []Issue{decodeIssue(err, path)}
		}
		if items == nil {
			v.Set(reflect.Zero(t))
			return nil
		}
		out := reflect.MakeSlice(t, len(items), len(items))
		var issues []Issue
		for i, item := range items {
			issues = append(issues, decodeValue(item, out.Index(i), fmt.Sprintf("%s[%d]", path, i))...)
		}
		v.Set(out)
		return issues

	default:
		if err := json.Unmarshal(raw, v.Addr().Interface()); err != nil {
			return []Issue{decodeIssue(err, path)}
		}
		return nil
	}
}

func decodeObject(raw []byte, v reflect.Value, path string) []Issue {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return []Issue{decodeIssue(err, path)}
	}

	var issues []Issue
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if name == "" || !f.IsExported() {
			continue
		}
		value, ok := lookupField(fields, name)
		if !ok {
			continue
		}
		issues = append(issues, decodeValue(value, v.Field(i), joinPath(path, name))...)
	}
	return issues
}

// lookupField matches keys the way encoding/json does: exact first, then
// case-insensitive.
func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if value, ok := fields[name]; ok {
		return value, true
	}
	for key, value := range fields {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

func isNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func check(w any, prefix string) []Issue {
	err := validate.Struct(w)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Path: prefix, Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(errs))
	for _, fe := range errs {
		issues = append(issues, fieldIssue(fe, prefix))
	}
	return issues
}
