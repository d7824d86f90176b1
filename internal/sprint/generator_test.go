package sprint

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/models"
)

func date(s string) *models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestGenerateSplitsRangeWithShortTail(t *testing.T) {
	spans := Generate(date("2025-01-01"), date("2025-01-10"), 7)

	require.Len(t, spans, 2)
	assert.Equal(t, "Sprint 1", spans[0].Name)
	assert.Equal(t, "2025-01-01", spans[0].Start.String())
	assert.Equal(t, "2025-01-07", spans[0].End.String())
	assert.Equal(t, "Sprint 2", spans[1].Name)
	assert.Equal(t, "2025-01-08", spans[1].Start.String())
	assert.Equal(t, "2025-01-10", spans[1].End.String())
}

func TestGenerateExactMultiple(t *testing.T) {
	spans := Generate(date("2025-03-01"), date("2025-03-14"), 7)

	require.Len(t, spans, 2)
	assert.Equal(t, "2025-03-07", spans[0].End.String())
	assert.Equal(t, "2025-03-14", spans[1].End.String())
}

func TestGenerateSingleDayProject(t *testing.T) {
	spans := Generate(date("2025-06-15"), date("2025-06-15"), 14)

	require.Len(t, spans, 1)
	assert.Equal(t, "Sprint 1", spans[0].Name)
	assert.Equal(t, spans[0].Start, spans[0].End)
}

func TestGenerateOneDaySprints(t *testing.T) {
	spans := Generate(date("2025-01-01"), date("2025-01-03"), 1)

	require.Len(t, spans, 3)
	for i, s := range spans {
		assert.Equal(t, fmt.Sprintf("Sprint %d", i+1), s.Name)
		assert.Equal(t, s.Start, s.End)
	}
}

func TestGenerateMalformedInputs(t *testing.T) {
	cases := []struct {
		name   string
		start  *models.Date
		end    *models.Date
		length int
	}{
		{"missing start", nil, date("2025-01-10"), 7},
		{"missing end", date("2025-01-01"), nil, 7},
		{"zero length", date("2025-01-01"), date("2025-01-10"), 0},
		{"negative length", date("2025-01-01"), date("2025-01-10"), -3},
		{"end before start", date("2025-01-10"), date("2025-01-01"), 7},
		{"zero-valued start", &models.Date{}, date("2025-01-10"), 7},
		{"zero-valued end", date("2025-01-01"), &models.Date{}, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, Generate(tc.start, tc.end, tc.length))
		})
	}
}

// TestGenerateInvariants checks the structural guarantees over a spread
// of range lengths and sprint sizes.
func TestGenerateInvariants(t *testing.T) {
	start := date("2024-11-20")
	for days := 1; days <= 40; days++ {
		end := start.AddDays(days - 1)
		for length := 1; length <= 15; length++ {
			spans := Generate(start, &end, length)
			require.NotEmpty(t, spans)

			assert.Equal(t, *start, spans[0].Start, "first sprint starts at the range start")
			assert.Equal(t, end, spans[len(spans)-1].End, "last sprint ends at the range end")

			for i, s := range spans {
				assert.False(t, s.End.Before(s.Start.Time))
				got := s.Start.DaysUntil(s.End) + 1
				assert.LessOrEqual(t, got, length, "sprint longer than configured length")
				if i > 0 {
					prev := spans[i-1]
					assert.Equal(t, prev.End.AddDays(1), s.Start, "sprints must be contiguous")
					assert.True(t, s.Start.After(prev.Start.Time), "sprints must ascend")
				}
			}
		}
	}
}

func TestGenerateCrossesMonthAndYearBoundaries(t *testing.T) {
	spans := Generate(date("2024-12-28"), date("2025-01-05"), 7)

	require.Len(t, spans, 2)
	assert.Equal(t, "2025-01-03", spans[0].End.String())
	assert.Equal(t, "2025-01-04", spans[1].Start.String())
	assert.Equal(t, "2025-01-05", spans[1].End.String())
}

func TestGenerateLeapDay(t *testing.T) {
	spans := Generate(date("2024-02-26"), date("2024-03-03"), 7)

	require.Len(t, spans, 1)
	assert.Equal(t, time.Month(3), spans[0].End.Month())
	assert.Equal(t, "2024-03-03", spans[0].End.String())
}
