package server

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/klietz/home-dashboard/internal/dashboard"
)

const (
	feedProductID = "-//home-dashboard//Calendar//EN"
	feedName      = "Dashboard"
	// Suggest refresh every hour; the feed is cheap to rebuild.
	feedTTL = "PT1H"
)

// BuildFeed renders the calendar view as an ICS subscription feed.
// Entries with a time become one-hour events; the rest are all-day.
// UIDs are stable across runs so calendar apps update instead of
// duplicating.
func BuildFeed(entries []dashboard.CalendarEntry, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(feedProductID)
	cal.SetXWRCalName(feedName)
	cal.SetXPublishedTTL(feedTTL)

	for _, entry := range entries {
		date, ok := dashboard.ParseDate(entry.Date)
		if !ok {
			continue
		}

		ev := cal.AddEvent(feedUID(entry))
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(entry.Title)
		ev.SetDescription(fmt.Sprintf("Dashboard %s item", entry.Source))

		if start, ok := entryStart(date, entry.Time); ok {
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(time.Hour))
		} else {
			ev.SetAllDayStartAt(date)
			ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		}
	}

	return cal.Serialize()
}

// feedUID derives a stable per-entry UID from date, title and source.
func feedUID(entry dashboard.CalendarEntry) string {
	slug := strings.ToLower(strings.Join(strings.Fields(entry.Title), "-"))
	return fmt.Sprintf("%s-%s-%s@home-dashboard", entry.Date, slug, entry.Source)
}

// entryStart combines a calendar date with an HH:MM time of day.
func entryStart(date time.Time, hhmm string) (time.Time, bool) {
	if hhmm == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}
