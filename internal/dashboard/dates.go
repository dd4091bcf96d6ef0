package dashboard

import "time"

// DateLayout is the only calendar date format accepted anywhere in the
// pipeline (ISO-8601 calendar date).
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD date string. Anything that is not a
// string, or not in canonical form (e.g. "2024-3-5"), fails. Callers treat
// a failed parse as "skip this field", never as an error.
func ParseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a date in canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayOf truncates t to midnight UTC, discarding time-of-day and zone.
// All dates in this package are naive calendar dates.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the signed whole-day count from today to date.
// Negative for past dates.
func DaysUntil(date, today time.Time) int {
	return int(DayOf(date).Sub(DayOf(today)).Hours() / 24)
}
