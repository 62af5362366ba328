package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

const msgInvalidDatetime = "Invalid datetime; expected ISO 8601, e.g. 2024-12-31T10:00:00Z"

var errInvalidDatetime = errors.New(msgInvalidDatetime)

// Timestamps without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is an ISO 8601 datetime in a request body. Unlike time.Time it
// also accepts values without a timezone.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errInvalidDatetime
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errInvalidDatetime
}

// TimePtr returns nil for an absent timestamp.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
