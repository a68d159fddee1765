package repository

import (
	"strings"
	"time"
)

// startTimeLayouts are the ISO-8601 shapes accepted for a class start time.
// Layouts without a zone are interpreted as UTC; zoned values are converted
// to UTC.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseStartTime parses an ISO-8601 timestamp.
func ParseStartTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, NewValidationError("start_time", "start_time is required")
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewValidationError("start_time",
		"start_time %q is not an ISO-8601 timestamp, use e.g. 2024-05-01T10:00:00", value)
}
