package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestWorkingDays(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"single monday", "2025-03-03", "2025-03-03", 1},
		{"single saturday", "2025-03-01", "2025-03-01", 0},
		{"full week mon-sun", "2025-03-03", "2025-03-09", 5},
		{"full week sat-fri", "2025-03-01", "2025-03-07", 5},
		{"full week wed-tue", "2025-03-05", "2025-03-11", 5},
		{"weekend only", "2025-03-08", "2025-03-09", 0},
		{"february 2025", "2025-02-01", "2025-02-28", 20},
		{"march 2025", "2025-03-01", "2025-03-31", 21},
		{"leap february 2024", "2024-02-01", "2024-02-29", 21},
		{"end before start", "2025-03-10", "2025-03-03", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := WorkingDays(date(t, c.start), date(t, c.end))
			assert.Equal(t, c.want, got)
		})
	}
}

func TestWorkingDays_EveryFullWeekIsFive(t *testing.T) {
	start := date(t, "2025-01-01")
	for i := 0; i < 60; i++ {
		s := start.AddDate(0, 0, i)
		assert.Equal(t, 5, WorkingDays(s, s.AddDate(0, 0, 6)), "week starting %s", s.Format(DateLayout))
	}
}

func TestWorkingDays_ReversedRangeIsZero(t *testing.T) {
	start := date(t, "2025-01-01")
	for i := 1; i < 40; i++ {
		assert.Zero(t, WorkingDays(start, start.AddDate(0, 0, -i)))
	}
}

func TestWorkingDays_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	start := time.Date(2025, 3, 3, 23, 30, 0, 0, loc)
	end := time.Date(2025, 3, 7, 0, 15, 0, 0, loc)
	assert.Equal(t, 5, WorkingDays(start, end))
}

func TestWorkingDates_MatchesCount(t *testing.T) {
	dates := WorkingDates(date(t, "2025-02-01"), date(t, "2025-02-28"))
	assert.Len(t, dates, 20)
	for _, d := range dates {
		assert.True(t, IsWorkingDay(d))
	}
	assert.Equal(t, "2025-02-03", dates[0].Format(DateLayout))
	assert.Equal(t, "2025-02-28", dates[len(dates)-1].Format(DateLayout))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 2)
	assert.Equal(t, "2024-02-01", start.Format(DateLayout))
	assert.Equal(t, "2024-02-29", end.Format(DateLayout))

	start, end = MonthRange(2025, 12)
	assert.Equal(t, "2025-12-01", start.Format(DateLayout))
	assert.Equal(t, "2025-12-31", end.Format(DateLayout))
}

func TestClip(t *testing.T) {
	start, end := MonthRange(2025, 3)
	hired := date(t, "2025-03-17")
	resigned := date(t, "2025-03-21")

	s, e := Clip(start, end, &hired, nil)
	assert.Equal(t, "2025-03-17", s.Format(DateLayout))
	assert.Equal(t, "2025-03-31", e.Format(DateLayout))

	s, e = Clip(start, end, &hired, &resigned)
	assert.Equal(t, 5, WorkingDays(s, e))

	before := date(t, "2025-02-01")
	s, e = Clip(start, end, nil, &before)
	assert.Zero(t, WorkingDays(s, e))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(date(t, "2025-03-10"), date(t, "2025-03-12"), date(t, "2025-03-12"), date(t, "2025-03-14")))
	assert.False(t, Overlaps(date(t, "2025-03-10"), date(t, "2025-03-12"), date(t, "2025-03-13"), date(t, "2025-03-14")))
	assert.True(t, Overlaps(date(t, "2025-03-01"), date(t, "2025-03-31"), date(t, "2025-03-10"), date(t, "2025-03-10")))
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 3, DaysInclusive(date(t, "2025-03-10"), date(t, "2025-03-12")))
	assert.Equal(t, 1, DaysInclusive(date(t, "2025-03-10"), date(t, "2025-03-10")))
	assert.Zero(t, DaysInclusive(date(t, "2025-03-12"), date(t, "2025-03-10")))
}

func TestDaysInclusive_BeyondDurationRange(t *testing.T) {
	// time.Duration saturates after roughly 292 years
	assert.Equal(t, 136309, DaysInclusive(date(t, "2026-10-20"), date(t, "2400-01-01")))
	assert.Equal(t, 3652059, DaysInclusive(date(t, "0001-01-01"), date(t, "9999-12-31")))
}
