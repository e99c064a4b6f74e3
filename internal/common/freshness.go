package common

import "time"

// IsFresh returns true if the given timestamp is within the TTL of now
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}

// StartOfDay returns midnight UTC of the calendar day containing t.
// Calendar dates (snapshots, benchmark closes) are always keyed in UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats the UTC calendar day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
