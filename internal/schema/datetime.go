package schema

import (
	"fmt"
	"time"
)

// ISO-8601 layouts accepted for datetime fields. Values without an offset
// are read as UTC. Surrounding whitespace is rejected.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Additional layouts accepted where any parseable date will do.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDateTime parses an ISO-8601 datetime.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// ParseDate parses an ISO-8601 datetime, a bare date or an RFC 1123 date.
func ParseDate(s string) (time.Time, error) {
	if t, err := ParseDateTime(s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
