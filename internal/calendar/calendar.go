// Package calendar flattens a project's sprints and tasks into
// day-indexed events for a month view.
package calendar

import (
	"fmt"
	"time"

	"planboard/internal/models"
)

// Event types rendered on the calendar.
const (
	TypeSprint = "sprint"
	TypeTask   = "task"
)

// Event is one entry on a calendar day.
type Event struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ParseMonth parses a "YYYY-MM" query value.
func ParseMonth(s string) (year int, month int, err error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: %w", s, err)
	}
	return t.Year(), int(t.Month()), nil
}

// Resolve returns the requested year/month, falling back to the
// reference date's month when the request is out of range. The
// reference is the project start date, or today for projects without
// one.
func Resolve(ref models.Date, year, month int) (int, int) {
	if year < 1 || month < 1 || month > 12 {
		return ref.Year(), int(ref.Month())
	}
	return year, month
}

// Bounds returns the first and last day of the month.
func Bounds(year, month int) (models.Date, models.Date) {
	first := models.NewDate(year, time.Month(month), 1)
	last := first.AddDate(0, 1, -1)
	return first, models.DateOf(last)
}

// Prev returns the month before the given one, rolling the year.
func Prev(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// Next returns the month after the given one, rolling the year.
func Next(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// MonthEvents builds the day-indexed event map for a month. Sprints are
// emitted before tasks and both keep their input order; within a day
// the list is insertion-ordered, never re-sorted. Date ranges are
// clipped to the month; a range entirely outside it contributes
// nothing.
func MonthEvents(year, month int, sprints []models.Sprint, tasks []models.Task) map[string][]Event {
	monthStart, monthEnd := Bounds(year, month)
	events := make(map[string][]Event)

	for _, s := range sprints {
		addRange(events, s.StartDate, s.EndDate, monthStart, monthEnd, Event{
			Label: "Sprint: " + s.Name,
			Type:  TypeSprint,
		})
	}

	for _, t := range tasks {
		start, end, ok := taskDisplayRange(&t)
		if !ok {
			continue
		}
		addRange(events, start, end, monthStart, monthEnd, Event{
			Label: "Task: " + t.Title,
			Type:  TypeTask,
		})
	}

	return events
}

// taskDisplayRange derives the range a task occupies on the calendar:
// the start falls back to the due date, the end falls back to the due
// date and then the start date. Tasks without any usable pair of dates
// are skipped.
func taskDisplayRange(t *models.Task) (models.Date, models.Date, bool) {
	start := t.StartDate
	if start == nil {
		start = t.DueDate
	}
	end := t.EndDate
	if end == nil {
		end = t.DueDate
	}
	if end == nil {
		end = t.StartDate
	}
	if start == nil || end == nil {
		return models.Date{}, models.Date{}, false
	}
	return *start, *end, true
}

func addRange(events map[string][]Event, start, end, monthStart, monthEnd models.Date, ev Event) {
	if start.Before(monthStart.Time) {
		start = monthStart
	}
	if end.After(monthEnd.Time) {
		end = monthEnd
	}
	for day := start; !day.After(end.Time); day = day.AddDays(1) {
		key := day.String()
		events[key] = append(events[key], ev)
	}
}
