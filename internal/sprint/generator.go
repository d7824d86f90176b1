// Package sprint derives the sprint plan for a project's date range.
package sprint

import (
	"fmt"

	"planboard/internal/models"
)

// Span is a generated sprint before it is persisted. Start and end are
// inclusive.
type Span struct {
	Name  string
	Start models.Date
	End   models.Date
}

// Generate partitions [start, end] into consecutive spans of at most
// lengthDays days each, named "Sprint 1", "Sprint 2", and so on. The
// last span is shortened to end exactly on end. Missing dates, a range
// ending before it starts, or lengthDays < 1 yield no spans.
func Generate(start, end *models.Date, lengthDays int) []Span {
	if start == nil || end == nil || lengthDays < 1 {
		return nil
	}
	if start.IsZero() || end.IsZero() {
		return nil
	}
	if end.Before(start.Time) {
		return nil
	}

	var spans []Span
	cur := *start
	for !cur.After(end.Time) {
		spanEnd := cur.AddDays(lengthDays - 1)
		if spanEnd.After(end.Time) {
			spanEnd = *end
		}
		spans = append(spans, Span{
			Name:  fmt.Sprintf("Sprint %d", len(spans)+1),
			Start: cur,
			End:   spanEnd,
		})
		cur = spanEnd.AddDays(1)
	}
	return spans
}
