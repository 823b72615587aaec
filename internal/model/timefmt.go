package model

import "time"

// FormatTime renders t the way durable state stores it: RFC 3339 in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime reads a timestamp written by FormatTime, or any RFC 3339 text.
// Unparseable input yields the zero time and ok == false.
func ParseTime(s string) (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
