// Package period does the calendar math behind digests: ISO weeks, month bounds,
// display labels and archive-window checks. Everything is computed in UTC.
package period

import (
	"errors"
	"fmt"
	"time"

	"policytrack/internal/model"
)

const (
	ReasonOutsideArchive = "outside archive limit"
	ReasonFuture         = "future period"
)

var (
	ErrInvalidType = errors.New("period type must be week or month")
	ErrOutOfRange  = errors.New("period number out of range")
)

// ISOWeek returns the ISO-8601 year and week of t, evaluated in UTC.
func ISOWeek(t time.Time) (year, week int) {
	return t.UTC().ISOWeek()
}

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func WeeksInYear(isoYear int) int {
	_, w := time.Date(isoYear, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// WeekBounds returns Monday 00:00:00.000 and Sunday 23:59:59.999 UTC of an ISO week.
func WeekBounds(isoYear, week int) (time.Time, time.Time) {
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	start := jan4.AddDate(0, 0, -offset+(week-1)*7)
	return start, endOfDay(start.AddDate(0, 0, 6))
}

// MonthBounds returns the first instant and the last millisecond of a calendar month in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return start, endOfDay(last)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// FormatLabel renders the human label of a period.
func FormatLabel(typ model.PeriodType, start, end time.Time, year, num int) string {
	if typ == model.PeriodMonth {
		return fmt.Sprintf("%s %d", time.Month(num).String(), year)
	}
	if start.Month() == end.Month() {
		return fmt.Sprintf("Week of %s - %d, %d", start.Format("Jan 2"), end.Day(), year)
	}
	return fmt.Sprintf("Week of %s - %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), year)
}

// Resolve validates the period numbers and returns the resolved window.
func Resolve(typ model.PeriodType, year, num int) (model.DigestPeriod, error) {
	var start, end time.Time
	switch typ {
	case model.PeriodWeek:
		if num < 1 || num > WeeksInYear(year) {
			return model.DigestPeriod{}, fmt.Errorf("%w: week %d of %d", ErrOutOfRange, num, year)
		}
		start, end = WeekBounds(year, num)
	case model.PeriodMonth:
		if num < 1 || num > 12 {
			return model.DigestPeriod{}, fmt.Errorf("%w: month %d", ErrOutOfRange, num)
		}
		start, end = MonthBounds(year, time.Month(num))
	default:
		return model.DigestPeriod{}, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	return model.DigestPeriod{
		Type:   typ,
		Year:   year,
		Period: num,
		Start:  start,
		End:    end,
		Label:  FormatLabel(typ, start, end, year, num),
	}, nil
}

// ParseType converts a path or flag value into a PeriodType.
func ParseType(s string) (model.PeriodType, error) {
	switch model.PeriodType(s) {
	case model.PeriodWeek, model.PeriodMonth:
		return model.PeriodType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Validation is the outcome of an archive-window check.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Calculator applies the configured archive retention to period requests.
type Calculator struct {
	RetentionMonths int
}

// NewCalculator returns a Calculator keeping retentionMonths of history.
func NewCalculator(retentionMonths int) Calculator {
	return Calculator{RetentionMonths: retentionMonths}
}

func (c Calculator) cutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, -c.RetentionMonths, 0)
}

// ValidateArchiveWindow checks the resolved start of a period against the archive window.
func (c Calculator) ValidateArchiveWindow(typ model.PeriodType, year, num int, now time.Time) Validation {
	p, err := Resolve(typ, year, num)
	if err != nil {
		return Validation{Reason: err.Error()}
	}
	return c.check(p, now)
}

func (c Calculator) check(p model.DigestPeriod, now time.Time) Validation {
	if p.Start.After(now.UTC()) {
		return Validation{Reason: ReasonFuture}
	}
	if p.Start.Before(c.cutoff(now)) {
		return Validation{Reason: ReasonOutsideArchive}
	}
	return Validation{Valid: true}
}

// Available lists the periods of the given type that pass the archive check, newest first.
func (c Calculator) Available(typ model.PeriodType, now time.Time) ([]model.DigestPeriod, error) {
	now = now.UTC()
	var year, num int
	switch typ {
	case model.PeriodWeek:
		year, num = ISOWeek(now)
	case model.PeriodMonth:
		year, num = now.Year(), int(now.Month())
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}

	var out []model.DigestPeriod
	for {
		p, err := Resolve(typ, year, num)
		if err != nil {
			return nil, err
		}
		if !c.check(p, now).Valid {
			break
		}
		out = append(out, p)
		year, num = previous(typ, year, num)
	}
	return out, nil
}

func previous(typ model.PeriodType, year, num int) (int, int) {
	if num > 1 {
		return year, num - 1
	}
	if typ == model.PeriodWeek {
		return year - 1, WeeksInYear(year - 1)
	}
	return year - 1, 12
}
