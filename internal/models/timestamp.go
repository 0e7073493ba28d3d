package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"
	"time"
)

// TimestampLayout is the stored form: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var parseLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a nullable date column. Raw keeps the stored text so that a
// malformed value survives a round trip; Valid reports whether it parsed.
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

func NewTimestamp(t time.Time) Timestamp {
	u := t.UTC()
	return Timestamp{Raw: u.Format(TimestampLayout), Time: u, Valid: true}
}

func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Raw: raw, Time: t.UTC(), Valid: true}
		}
	}
	return Timestamp{Raw: raw}
}

// IsZero reports an absent value (SQL NULL).
func (t Timestamp) IsZero() bool { return t.Raw == "" }

// Local returns the time in the local zone.
func (t Timestamp) Local() time.Time { return t.Time.Local() }

// Format renders a valid timestamp in local time, or fallback.
func (t Timestamp) Format(layout, fallback string) string {
	if !t.Valid {
		return fallback
	}
	return t.Local().Format(layout)
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
	case string:
		*t = ParseTimestamp(v)
	case []byte:
		*t = ParseTimestamp(string(v))
	case time.Time:
		*t = NewTimestamp(v)
	default:
		return fmt.Errorf("timestamp: unsupported type %T", src)
	}
	return nil
}

func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Raw, nil
}

// CeilDays converts a duration into whole days, rounding up.
func CeilDays(d time.Duration) int {
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}
