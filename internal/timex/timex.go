// Package timex holds time helpers shared by the sync engine and config:
// the ISO-8601 stamp format used as the logical clock on every entity, and
// a JSON-friendly Duration for config files.
package timex

import "time"

// StampLayout is the wire/storage format for entity timestamps. All stamps
// are UTC so that lexical and chronological order agree.
const StampLayout = time.RFC3339Nano

// Stamp formats t as an ISO-8601 UTC string.
func Stamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// Parse converts a stamp back to a time. The zero time is returned for an
// empty or malformed stamp; entities with no stamp always lose a
// last-writer-wins comparison.
func Parse(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(StampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// After reports whether stamp a is strictly later than stamp b.
func After(a, b string) bool {
	return Parse(a).After(Parse(b))
}
