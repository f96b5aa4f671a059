package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policytrack/internal/model"
)

func TestISOWeek(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		wantYear int
		wantWeek int
	}{
		{"mid year", time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC), 2024, 24},
		{"jan 1 belongs to previous iso year", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 2020, 53},
		{"dec 30 belongs to next iso year", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), 2025, 1},
		{"sunday closes the week", time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC), 2024, 1},
		{"local time is read in utc", time.Date(2024, 1, 8, 1, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)), 2024, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, w := ISOWeek(tt.date)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantWeek, w)
		})
	}
}

func TestWeekBounds_SevenDayMondayToSunday(t *testing.T) {
	for year := 2015; year <= 2030; year++ {
		for week := 1; week <= WeeksInYear(year); week++ {
			start, end := WeekBounds(year, week)

			require.Equal(t, time.Monday, start.Weekday(), "%d-W%d", year, week)
			require.Equal(t, time.Sunday, end.Weekday(), "%d-W%d", year, week)
			require.Equal(t, 0, start.Hour()+start.Minute()+start.Second()+start.Nanosecond())
			require.Equal(t, 23, end.Hour())
			require.Equal(t, 59, end.Minute())
			require.Equal(t, 59, end.Second())
			require.Equal(t, int(999*time.Millisecond), end.Nanosecond())
			require.Equal(t, 7*24*time.Hour-time.Millisecond, end.Sub(start))
			require.Equal(t, time.UTC, start.Location())

			y, w := ISOWeek(start)
			require.Equal(t, year, y)
			require.Equal(t, week, w)
		}
	}
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2024))
	assert.Equal(t, 53, WeeksInYear(2026))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2024, time.February)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999e6, time.UTC), end)

	start, end = MonthBounds(2023, time.February)
	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 2, 28, 23, 59, 59, 999e6, time.UTC), end)

	_, end = MonthBounds(2024, time.December)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 999e6, time.UTC), end)
}

func TestFormatLabel(t *testing.T) {
	start, end := MonthBounds(2024, time.January)
	assert.Equal(t, "January 2024", FormatLabel(model.PeriodMonth, start, end, 2024, 1))

	start, end = WeekBounds(2024, 1)
	assert.Equal(t, "Week of Jan 1 - 7, 2024", FormatLabel(model.PeriodWeek, start, end, 2024, 1))

	start, end = WeekBounds(2024, 5)
	assert.Equal(t, "Week of Jan 29 - Feb 4, 2024", FormatLabel(model.PeriodWeek, start, end, 2024, 5))
}

func TestResolve(t *testing.T) {
	p, err := Resolve(model.PeriodWeek, 2020, 53)
	require.NoError(t, err)
	assert.Equal(t, "Week of Dec 28 - Jan 3, 2020", p.Label)

	_, err = Resolve(model.PeriodWeek, 2024, 53)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Resolve(model.PeriodWeek, 2024, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Resolve(model.PeriodMonth, 2024, 13)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Resolve("quarter", 2024, 1)
	assert.ErrorIs(t, err, ErrInvalidType)

	p, err = Resolve(model.PeriodMonth, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, "March 2024", p.Label)
	assert.Equal(t, 3, p.Period)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("week")
	require.NoError(t, err)
	assert.Equal(t, model.PeriodWeek, typ)

	_, err = ParseType("year")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestValidateArchiveWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	calc := NewCalculator(12)

	tests := []struct {
		name       string
		typ        model.PeriodType
		year, num  int
		wantValid  bool
		wantReason string
	}{
		{"too old", model.PeriodMonth, 2020, 1, false, ReasonOutsideArchive},
		{"future", model.PeriodMonth, 2030, 1, false, ReasonFuture},
		{"current month", model.PeriodMonth, 2025, 6, true, ""},
		{"inside window", model.PeriodMonth, 2024, 7, true, ""},
		{"start just before cutoff", model.PeriodMonth, 2024, 6, false, ReasonOutsideArchive},
		{"next week", model.PeriodWeek, 2025, 26, false, ReasonFuture},
		{"current week", model.PeriodWeek, 2025, 24, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := calc.ValidateArchiveWindow(tt.typ, tt.year, tt.num, now)
			assert.Equal(t, tt.wantValid, v.Valid)
			assert.Equal(t, tt.wantReason, v.Reason)
		})
	}
}

func TestValidateArchiveWindow_ShortRetention(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	v := NewCalculator(3).ValidateArchiveWindow(model.PeriodMonth, 2025, 2, now)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonOutsideArchive, v.Reason)

	v = NewCalculator(3).ValidateArchiveWindow(model.PeriodMonth, 2025, 4, now)
	assert.True(t, v.Valid)
}

func TestAvailable(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	months, err := NewCalculator(3).Available(model.PeriodMonth, now)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, "June 2025", months[0].Label)
	assert.Equal(t, "April 2025", months[2].Label)

	weeks, err := NewCalculator(1).Available(model.PeriodWeek, now)
	require.NoError(t, err)
	require.NotEmpty(t, weeks)
	assert.Equal(t, 24, weeks[0].Period)
	for i := 1; i < len(weeks); i++ {
		assert.True(t, weeks[i].Start.Before(weeks[i-1].Start))
	}

	_, err = NewCalculator(1).Available("day", now)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestAvailable_CrossesYearBoundary(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	weeks, err := NewCalculator(1).Available(model.PeriodWeek, now)
	require.NoError(t, err)

	var sawPreviousYear bool
	for _, w := range weeks {
		if w.Year == 2024 && w.Period == 52 {
			sawPreviousYear = true
		}
	}
	assert.True(t, sawPreviousYear)
}
