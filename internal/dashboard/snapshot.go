package dashboard

import "time"

// DefaultWindowDays is the rolling look-ahead for the calendar view and
// recurrence expansion.
const DefaultWindowDays = 28

// timestampLayout renders generated_at at second precision with no zone
// offset.
const timestampLayout = "2006-01-02T15:04:05"

// LeftColumn holds the classified one-off view plus the merged today list.
type LeftColumn struct {
	Today     []TodayEntry `json:"today"`
	Now       []OneOffItem `json:"now"`
	Soon      []OneOffItem `json:"soon"`
	Landmarks []OneOffItem `json:"landmarks"`
}

// RightColumn holds appointments and recurring items.
type RightColumn struct {
	Appointments []Appointment   `json:"appointments"`
	Recurring    []RecurringItem `json:"recurring"`
}

// Snapshot is the rendered output document. The assembler owns the
// document and its timestamp; everything upstream is transient.
type Snapshot struct {
	GeneratedAt string          `json:"generated_at"`
	Left        LeftColumn      `json:"left"`
	Right       RightColumn     `json:"right"`
	Calendar    []CalendarEntry `json:"calendar"`
}

// Assemble runs the full pipeline over the raw lists. now is the only
// clock reference: today is derived from it and generated_at records it.
// Identical inputs with identical now produce identical output.
func Assemble(now time.Time, leftRaw, rightRaw []Raw, windowDays int) Snapshot {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	today := DayOf(now)

	oneOffs := NormalizeOneOffs(leftRaw)
	appts, recurring := NormalizeRightItems(rightRaw, today)

	recurring = ResolveNext(recurring, today)
	occs := ExpandOccurrences(recurring, today, windowDays)

	buckets := ClassifyOneOff(oneOffs, today)
	SortByDateOrNext(appts)

	return Snapshot{
		GeneratedAt: now.Format(timestampLayout),
		Left: LeftColumn{
			Today:     BuildTodayList(today, oneOffs, appts, occs),
			Now:       buckets.Now,
			Soon:      buckets.Soon,
			Landmarks: buckets.Landmarks,
		},
		Right: RightColumn{
			Appointments: appts,
			Recurring:    recurring,
		},
		Calendar: BuildCalendar(today, oneOffs, occs, windowDays),
	}
}
