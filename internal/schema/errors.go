package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue is a single offending path and the reason it was rejected.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError reports every constraint a payload violated.
type ValidationError struct {
	Schema string  `json:"schema"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("invalid %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Has reports whether any issue was raised for path.
func (e *ValidationError) Has(path string) bool {
	for _, issue := range e.Issues {
		if issue.Path == path {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err is a shape failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func asValidationError(name string, err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return &ValidationError{Schema: name, Issues: []Issue{{Message: err.Error()}}}
}

func fieldIssue(fe validator.FieldError, prefix string) Issue {
	path := fe.Namespace()
	// Drop the wire struct name
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	return Issue{Path: joinPath(prefix, path), Message: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid", "anyuuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "isodatetime":
		return "must be an ISO-8601 datetime"
	case "anydate":
		return "must be a valid date"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// decodeIssue classifies JSON decoding errors.
func decodeIssue(err error, prefix string) Issue {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxError):
		return Issue{Path: prefix, Message: fmt.Sprintf("malformed JSON at character %d", syntaxError.Offset)}
	case errors.As(err, &typeError):
		return Issue{
			Path:    joinPath(prefix, typeError.Field),
			Message: fmt.Sprintf("expected %s, got %s", jsonKind(typeError.Type), typeError.Value),
		}
	default:
		if strings.Contains(err.Error(), "unexpected end of JSON input") {
			return Issue{Path: prefix, Message: "malformed JSON: unexpected end of input"}
		}
		return Issue{Path: prefix, Message: err.Error()}
	}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "." + path
	}
}
