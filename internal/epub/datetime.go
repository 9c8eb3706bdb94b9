package epub

import "time"

// FormatTimestamp renders an instant as the canonical creation timestamp:
// UTC, YYYY-MM-DDTHH:MM:SSZ. No other timezone is supported.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Timestamp returns the current instant in canonical form.
func Timestamp() string { return FormatTimestamp(time.Now()) }
