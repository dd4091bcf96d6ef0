package dashboard

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultTitle is substituted for one-off items whose record carries no
// title key at all.
const DefaultTitle = "(untitled)"

// Raw is a decoded JSON object as it arrives from storage. No field is
// guaranteed present or well-typed; Raw never leaks past the normalizer.
type Raw map[string]any

// OneOffItem is a normalized left-column item. Date is always a valid
// canonical date; DaysUntil is filled in by the classifier.
type OneOffItem struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Tag       string `json:"tag,omitempty"`
	DaysUntil int    `json:"days_until"`
}

// Recurrence is a weekly recurrence rule. Days keeps the caller's tokens
// as written; canonicalization to weekday indices happens at expansion.
type Recurrence struct {
	Freq string   `json:"freq"`
	Days []string `json:"days"`
	Time string   `json:"time,omitempty"`
}

// Appointment is a right-column item anchored to a single date (or to the
// next occurrence of something managed outside the dashboard). Unlike
// one-off items an appointment survives normalization even when neither
// date field parses; it then carries only title/notes/tag.
type Appointment struct {
	Title          string `json:"title"`
	Date           string `json:"date,omitempty"`
	NextOccurrence string `json:"next_occurrence,omitempty"`
	Time           string `json:"time,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Tag            string `json:"tag,omitempty"`
	DaysUntil      *int   `json:"days_until,omitempty"`
}

// RecurringItem is a right-column item with a weekly recurrence rule.
// NextOccurrence and DaysUntil are derived at aggregation time.
type RecurringItem struct {
	Title          string     `json:"title"`
	Recurrence     Recurrence `json:"recurrence"`
	Notes          string     `json:"notes,omitempty"`
	Tag            string     `json:"tag,omitempty"`
	NextOccurrence string     `json:"next_occurrence,omitempty"`
	DaysUntil      *int       `json:"days_until,omitempty"`
}

// RightItem is the tagged result of normalizing one right-column record.
// Exactly one of the two fields is set. The recurring-vs-appointment
// decision is made here, once, and never re-derived downstream.
type RightItem struct {
	Appointment *Appointment
	Recurring   *RecurringItem
}

// Occurrence is one concrete calendar day generated by expanding a
// recurring item. Never persisted; recomputed every run.
type Occurrence struct {
	Title string
	Date  string
	Time  string
	Tag   string
}

// NormalizeOneOff converts a raw left-column record into a OneOffItem.
// Records without a parseable date are dropped.
func NormalizeOneOff(rec Raw) (OneOffItem, bool) {
	date, ok := ParseDate(rec["date"])
	if !ok {
		return OneOffItem{}, false
	}

	item := OneOffItem{
		Title: DefaultTitle,
		Date:  FormatDate(date),
	}
	if v, ok := rec["title"]; ok {
		item.Title = coerceString(v)
	}
	item.Time = truthyString(rec["time"])
	item.Notes = truthyString(rec["notes"])
	item.Tag = truthyString(rec["tag"])

	return item, true
}

// NormalizeRightItem converts a raw right-column record into either an
// Appointment or a RecurringItem. A record is recurring iff its
// recurrence.days is a non-empty list. Records without a title are
// dropped.
func NormalizeRightItem(rec Raw, today time.Time) (RightItem, bool) {
	if !truthy(rec["title"]) {
		return RightItem{}, false
	}
	title := coerceString(rec["title"])
	notes := truthyString(rec["notes"])
	tag := truthyString(rec["tag"])

	if days, ok := recurrenceDays(rec); ok {
		rule := Recurrence{Freq: "weekly", Days: days}
		if rm, ok := rec["recurrence"].(map[string]any); ok {
			rule.Time = truthyString(rm["time"])
		}
		return RightItem{Recurring: &RecurringItem{
			Title:      title,
			Recurrence: rule,
			Notes:      notes,
			Tag:        tag,
		}}, true
	}

	appt := &Appointment{
		Title: title,
		Notes: notes,
		Tag:   tag,
		Time:  truthyString(rec["time"]),
	}

	// The date field wins by presence, not parseability: next_occurrence
	// is consulted only when date is absent or falsy, so a present but
	// malformed date leaves the appointment dateless. Dateless
	// appointments are kept rather than dropped.
	if truthy(rec["date"]) {
		if date, ok := ParseDate(rec["date"]); ok {
			appt.Date = FormatDate(date)
			d := DaysUntil(date, today)
			appt.DaysUntil = &d
		}
	} else if next, ok := ParseDate(rec["next_occurrence"]); ok {
		appt.NextOccurrence = FormatDate(next)
		d := DaysUntil(next, today)
		appt.DaysUntil = &d
	}

	return RightItem{Appointment: appt}, true
}

// NormalizeRightItems partitions a raw right-column list into appointments
// and recurring items, discarding records that fail normalization.
func NormalizeRightItems(records []Raw, today time.Time) ([]Appointment, []RecurringItem) {
	appts := make([]Appointment, 0, len(records))
	recurring := make([]RecurringItem, 0)
	for _, rec := range records {
		item, ok := NormalizeRightItem(rec, today)
		if !ok {
			continue
		}
		if item.Recurring != nil {
			recurring = append(recurring, *item.Recurring)
		} else {
			appts = append(appts, *item.Appointment)
		}
	}
	return appts, recurring
}

// NormalizeOneOffs normalizes a raw left-column list, discarding records
// without a parseable date.
func NormalizeOneOffs(records []Raw) []OneOffItem {
	items := make([]OneOffItem, 0, len(records))
	for _, rec := range records {
		if item, ok := NormalizeOneOff(rec); ok {
			items = append(items, item)
		}
	}
	return items
}

// recurrenceDays extracts recurrence.days as a string slice when it is a
// non-empty list.
func recurrenceDays(rec Raw) ([]string, bool) {
	rm, ok := rec["recurrence"].(map[string]any)
	if !ok {
		return nil, false
	}
	list, ok := rm["days"].([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	days := make([]string, 0, len(list))
	for _, d := range list {
		days = append(days, coerceString(d))
	}
	return days, true
}

// coerceString renders a decoded JSON value as a string. JSON numbers
// arrive as float64; whole values must not grow a trailing ".0".
func coerceString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// truthy reports whether an optional field counts as present: empty
// strings, zero, false, nil and empty containers are all treated as
// absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// truthyString coerces an optional field to a string, or "" when the
// field is absent or falsy (omitted from output via omitempty).
func truthyString(v any) string {
	if !truthy(v) {
		return ""
	}
	return coerceString(v)
}
