package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// lookAheadDays bounds every forward scan for a next occurrence. A
// non-empty weekday set always matches within 7 days; the cap only guards
// the degenerate empty-set case.
const lookAheadDays = 28

// weekdayAliases maps accepted weekday tokens to canonical indices,
// 0=Monday .. 6=Sunday.
var weekdayAliases = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// rruleWeekdays maps canonical indices to rrule BYDAY values. rrule-go
// uses the same Monday-based numbering.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// NormalizeWeekdays resolves weekday names and abbreviations to a sorted,
// de-duplicated set of canonical indices. Unrecognized tokens are silently
// dropped.
func NormalizeWeekdays(names []string) []int {
	var seen [7]bool
	for _, name := range names {
		if idx, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			seen[idx] = true
		}
	}
	out := make([]int, 0, 7)
	for idx, hit := range seen {
		if hit {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// weeklyRule builds a FREQ=WEEKLY rule starting at start for the given
// canonical weekday indices.
func weeklyRule(start time.Time, weekdays []int) (*rrule.RRule, error) {
	byday := make([]rrule.Weekday, 0, len(weekdays))
	for _, idx := range weekdays {
		byday = append(byday, rruleWeekdays[idx])
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   DayOf(start),
		Byweekday: byday,
	})
}

// NextOccurrence returns the first date from start inclusive whose weekday
// is in the set, scanning at most lookAheadDays ahead. Returns false for
// an empty set.
func NextOccurrence(start time.Time, weekdays []int) (time.Time, bool) {
	if len(weekdays) == 0 {
		return time.Time{}, false
	}
	r, err := weeklyRule(start, weekdays)
	if err != nil {
		return time.Time{}, false
	}
	next := r.After(DayOf(start), true)
	if next.IsZero() || DaysUntil(next, start) >= lookAheadDays {
		return time.Time{}, false
	}
	return next, true
}

// ExpandOccurrences expands each recurring item into concrete calendar
// days within [start, start+windowDays). An item yields at most one
// occurrence per day: the weekday set is de-duplicated before the rule is
// built, so redundant aliases in days cannot double an entry.
func ExpandOccurrences(items []RecurringItem, start time.Time, windowDays int) []Occurrence {
	occs := make([]Occurrence, 0)
	if windowDays <= 0 {
		return occs
	}
	first := DayOf(start)
	last := first.AddDate(0, 0, windowDays-1)

	for _, item := range items {
		weekdays := NormalizeWeekdays(item.Recurrence.Days)
		if len(weekdays) == 0 {
			continue
		}
		r, err := weeklyRule(first, weekdays)
		if err != nil {
			continue
		}
		for _, day := range r.Between(first, last, true) {
			occs = append(occs, Occurrence{
				Title: item.Title,
				Date:  FormatDate(day),
				Time:  item.Recurrence.Time,
				Tag:   item.Tag,
			})
		}
	}
	return occs
}
