package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Unknown marks a field that exists in the schema but whose value the remote
// source omitted or we could not derive. It is distinct from "" and NULL.
const Unknown = "unk"

// StoredLayout is how derived timestamps are written to the store.
const StoredLayout = "2006-01-02 15:04:05"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	StoredLayout,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 style timestamp as UTC.
// Values without a zone are taken to be UTC already.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Unknown {
		return time.Time{}, fmt.Errorf("parse timestamp %q: no value", s)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognised format", s)
}

// DaysToResolution returns floor((end - now) in days).
func DaysToResolution(end, now time.Time) int {
	return int(math.Floor(end.Sub(now).Hours() / 24))
}
