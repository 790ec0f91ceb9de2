package schema

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
)

// identifier accepts a JSON string or number and keeps its string form.
type identifier string

func (id *identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = identifier(s)
		return nil
	case 'n':
		// null leaves the pointer unset
		return nil
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return &json.UnmarshalTypeError{Value: kindOf(data), Type: reflect.TypeOf("")}
		}
		*id = identifier(data)
		return nil
	}
}

func kindOf(data []byte) string {
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "value"
	}
}
