package dashboard

import (
	"sort"
	"time"
)

// Bucket thresholds, inclusive day counts.
const (
	nowMaxDays  = 7
	soonMaxDays = 30
)

// farFutureDate sorts undated appointments after every dated one.
const farFutureDate = "9999-12-31"

// Buckets groups one-off items by proximity to today.
type Buckets struct {
	Now       []OneOffItem `json:"now"`
	Soon      []OneOffItem `json:"soon"`
	Landmarks []OneOffItem `json:"landmarks"`
}

// ClassifyOneOff assigns each item a days_until relative to today and
// buckets it: now=[0,7], soon=[8,30], landmarks=[31,∞). Past items are
// dropped. Buckets are stably sorted ascending by date, so input order is
// preserved among same-day items.
func ClassifyOneOff(items []OneOffItem, today time.Time) Buckets {
	b := Buckets{
		Now:       make([]OneOffItem, 0),
		Soon:      make([]OneOffItem, 0),
		Landmarks: make([]OneOffItem, 0),
	}

	for _, item := range items {
		date, ok := ParseDate(item.Date)
		if !ok {
			continue
		}
		item.DaysUntil = DaysUntil(date, today)
		switch {
		case item.DaysUntil < 0:
			// Past items are silently excluded.
		case item.DaysUntil <= nowMaxDays:
			b.Now = append(b.Now, item)
		case item.DaysUntil <= soonMaxDays:
			b.Soon = append(b.Soon, item)
		default:
			b.Landmarks = append(b.Landmarks, item)
		}
	}

	sortItemsByDate(b.Now)
	sortItemsByDate(b.Soon)
	sortItemsByDate(b.Landmarks)
	return b
}

// sortItemsByDate sorts items ascending by date string; lexicographic
// order of canonical ISO dates equals chronological order.
func sortItemsByDate(items []OneOffItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date < items[j].Date
	})
}

// SortByDateOrNext orders appointments by date, falling back to
// next_occurrence, with dateless entries last.
func SortByDateOrNext(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return apptSortKey(appts[i]) < apptSortKey(appts[j])
	})
}

func apptSortKey(a Appointment) string {
	if a.Date != "" {
		return a.Date
	}
	if a.NextOccurrence != "" {
		return a.NextOccurrence
	}
	return farFutureDate
}
