package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Calendar decides which days are bookable. It knows the team's timezone
// (used to decide what "today" is) and any blacked out days.
type Calendar struct {
	loc       *time.Location
	blackouts []rrule.ROption
}

// New creates a calendar for the given location. Each blackout rule is an
// RFC 5545 RRULE string; rules without a DTSTART are anchored to 1 January
// of the year being checked.
func New(loc *time.Location, blackoutRules []string) (*Calendar, error) {
	if loc == nil {
		loc = time.UTC
	}

	blackouts := make([]rrule.ROption, 0, len(blackoutRules))
	for i, rule := range blackoutRules {
		opt, err := rrule.StrToROption(rule)
		if err != nil {
			return nil, fmt.Errorf("invalid blackout rule %d: %w", i, err)
		}
		blackouts = append(blackouts, *opt)
	}

	return &Calendar{loc: loc, blackouts: blackouts}, nil
}

// ParseDate strictly parses a YYYY-MM-DD string
func ParseDate(date string) (time.Time, error) {
	if len(date) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidDate, date)
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidDate, date)
	}
	return t, nil
}

// ParseMonth strictly parses a YYYY-MM string
func ParseMonth(month string) (time.Time, error) {
	if len(month) != len(MonthLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidMonth, month)
	}
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidMonth, month)
	}
	return t, nil
}

// MonthOf returns the YYYY-MM prefix of a well-formed date
func MonthOf(date string) string {
	if len(date) < len(MonthLayout) {
		return date
	}
	return date[:len(MonthLayout)]
}

// IsWeekend reports whether t falls on a Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Today returns the current calendar day in the calendar's location, as YYYY-MM-DD
func (c *Calendar) Today(now time.Time) string {
	return now.In(c.loc).Format(DateLayout)
}

// Location returns the calendar's timezone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// IsBlackedOut reports whether the given day matches any blackout rule
func (c *Calendar) IsBlackedOut(day time.Time) bool {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	for _, opt := range c.blackouts {
		if opt.Dtstart.IsZero() {
			opt.Dtstart = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		rule, err := rrule.NewRRule(opt)
		if err != nil {
			continue
		}
		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			return true
		}
	}
	return false
}

// WeekendDates lists every Saturday and Sunday in the month, in order
func WeekendDates(month string) ([]string, error) {
	start, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SA, rrule.SU},
		Dtstart:   start,
		Until:     end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build weekend rule: %w", err)
	}

	occurrences := rule.All()
	dates := make([]string, 0, len(occurrences))
	for _, occurrence := range occurrences {
		dates = append(dates, occurrence.Format(DateLayout))
	}
	return dates, nil
}
