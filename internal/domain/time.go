package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const legacyTimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time.Time that decodes leniently. Stored and remote
// payloads have carried RFC 3339 strings, space separated local times and
// epoch milliseconds; anything unparseable decodes to the zero value instead
// of failing the whole record.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// OrNow returns ts, or now when ts is zero.
func (ts Timestamp) OrNow(now time.Time) Timestamp {
	if ts.IsZero() {
		return At(now)
	}
	return ts
}

// MarshalJSON encodes the timestamp as RFC 3339 with nanoseconds, or null when zero.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON never fails on content; unknown shapes become the zero time.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			ts.Time = time.Time{}
			return nil
		}
		ts.Time = ParseTime(s)
		return nil
	}
	if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		ts.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		ts.Time = time.UnixMilli(int64(f)).UTC()
		return nil
	}
	ts.Time = time.Time{}
	return nil
}

// ParseTime parses the timestamp shapes seen in stored and remote payloads.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, value, time.Local); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
