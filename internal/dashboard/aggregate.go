package dashboard

import (
	"sort"
	"time"
)

// Source tags for merged entries.
const (
	SourceLeft        = "left"
	SourceAppointment = "appointment"
	SourceRecurring   = "recurring"
)

// untimedSentinel sorts untimed entries after every real HH:MM value.
const untimedSentinel = "99:99"

// TodayEntry is one line of the "what's happening today" list.
type TodayEntry struct {
	Title  string `json:"title"`
	Date   string `json:"date"`
	Time   string `json:"time,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Source string `json:"source"`
}

// CalendarEntry is one line of the rolling N-day calendar view.
type CalendarEntry struct {
	Title  string `json:"title"`
	Date   string `json:"date"`
	Time   string `json:"time,omitempty"`
	Source string `json:"source"`
}

// ResolveNext attaches next_occurrence/days_until to each recurring item
// for display. This annotates the item record itself; the occurrence list
// is produced separately by ExpandOccurrences.
func ResolveNext(items []RecurringItem, today time.Time) []RecurringItem {
	out := make([]RecurringItem, len(items))
	for i, item := range items {
		if next, ok := NextOccurrence(today, NormalizeWeekdays(item.Recurrence.Days)); ok {
			item.NextOccurrence = FormatDate(next)
			d := DaysUntil(next, today)
			item.DaysUntil = &d
		}
		out[i] = item
	}
	return out
}

// BuildTodayList merges one-off items, appointments and expanded
// occurrences whose effective date equals today, each tagged with its
// originating source. Untimed entries sort after timed ones; ties break
// alphabetically by title.
func BuildTodayList(today time.Time, oneOffs []OneOffItem, appts []Appointment, occs []Occurrence) []TodayEntry {
	todayStr := FormatDate(DayOf(today))
	entries := make([]TodayEntry, 0)

	for _, item := range oneOffs {
		if item.Date == todayStr {
			entries = append(entries, TodayEntry{
				Title:  item.Title,
				Date:   item.Date,
				Time:   item.Time,
				Tag:    item.Tag,
				Source: SourceLeft,
			})
		}
	}
	for _, a := range appts {
		if effectiveDate(a) == todayStr {
			entries = append(entries, TodayEntry{
				Title:  a.Title,
				Date:   todayStr,
				Time:   a.Time,
				Tag:    a.Tag,
				Source: SourceAppointment,
			})
		}
	}
	for _, o := range occs {
		if o.Date == todayStr {
			entries = append(entries, TodayEntry{
				Title:  o.Title,
				Date:   o.Date,
				Time:   o.Time,
				Tag:    o.Tag,
				Source: SourceRecurring,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := timeKey(entries[i].Time), timeKey(entries[j].Time)
		if ti != tj {
			return ti < tj
		}
		return entries[i].Title < entries[j].Title
	})
	return entries
}

// BuildCalendar merges one-off items within the window with all expanded
// recurring occurrences, sorted by (date, title).
func BuildCalendar(today time.Time, oneOffs []OneOffItem, occs []Occurrence, windowDays int) []CalendarEntry {
	entries := make([]CalendarEntry, 0)

	for _, item := range oneOffs {
		date, ok := ParseDate(item.Date)
		if !ok {
			continue
		}
		d := DaysUntil(date, today)
		if d < 0 || d >= windowDays {
			continue
		}
		entries = append(entries, CalendarEntry{
			Title:  item.Title,
			Date:   item.Date,
			Time:   item.Time,
			Source: SourceLeft,
		})
	}
	for _, o := range occs {
		entries = append(entries, CalendarEntry{
			Title:  o.Title,
			Date:   o.Date,
			Time:   o.Time,
			Source: SourceRecurring,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].Title < entries[j].Title
	})
	return entries
}

// effectiveDate is where an appointment lands on the calendar: its fixed
// date, else its next occurrence, else nothing.
func effectiveDate(a Appointment) string {
	if a.Date != "" {
		return a.Date
	}
	return a.NextOccurrence
}

func timeKey(t string) string {
	if t == "" {
		return untimedSentinel
	}
	return t
}
