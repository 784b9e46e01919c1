// Package calendar implements the working-day calendar used for Gantt date
// arithmetic: a day is a working day unless it falls on a weekend day or a
// configured holiday.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// WorkingDays is the calendar contract consumed by the Gantt resolver.
type WorkingDays interface {
	IsWorkingDay(d time.Time) bool
	IsHoliday(d time.Time) bool
	AddWorkingDays(d time.Time, n int) time.Time
	WorkingDaysBetween(from, to time.Time) int
}

// Calendar is an in-memory WorkingDays implementation. It is built once per
// request and not mutated afterwards.
type Calendar struct {
	weekend  map[time.Weekday]bool
	holidays map[string]string // YYYY-MM-DD -> name
}

var _ WorkingDays = (*Calendar)(nil)

// DefaultWeekend is Saturday and Sunday.
var DefaultWeekend = []time.Weekday{time.Saturday, time.Sunday}

// New creates a calendar with the given weekend days. A nil weekend uses
// DefaultWeekend.
func New(weekend []time.Weekday, holidays ...domain.Holiday) *Calendar {
	if weekend == nil {
		weekend = DefaultWeekend
	}
	c := &Calendar{
		weekend:  make(map[time.Weekday]bool, len(weekend)),
		holidays: make(map[string]string, len(holidays)),
	}
	for _, wd := range weekend {
		c.weekend[wd] = true
	}
	for _, h := range holidays {
		c.AddHoliday(h.Date, h.Name)
	}
	return c
}

// AddHoliday marks the given date as a holiday.
func (c *Calendar) AddHoliday(d time.Time, name string) {
	c.holidays[domain.Day(d).Format(domain.DateLayout)] = name
}

func (c *Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[domain.Day(d).Format(domain.DateLayout)]
	return ok
}

// HolidayName returns the name of the holiday on d, if any.
func (c *Calendar) HolidayName(d time.Time) (string, bool) {
	name, ok := c.holidays[domain.Day(d).Format(domain.DateLayout)]
	return name, ok
}

func (c *Calendar) IsWorkingDay(d time.Time) bool {
	return !c.weekend[d.Weekday()] && !c.IsHoliday(d)
}

// AddWorkingDays moves n working days away from d, skipping weekends and
// holidays. Negative n moves backwards. n == 0 returns d unchanged, even if
// d itself is not a working day.
func (c *Calendar) AddWorkingDays(d time.Time, n int) time.Time {
	d = domain.Day(d)
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	if len(c.weekend) >= 7 {
		// A week without working days would never terminate.
		return d
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if c.IsWorkingDay(d) {
			n--
		}
	}
	return d
}

// WorkingDaysBetween counts the working days in (from, to]. It is negative
// when to lies before from, so that AddWorkingDays(from, WorkingDaysBetween(from, to))
// lands on to whenever to is a working day.
func (c *Calendar) WorkingDaysBetween(from, to time.Time) int {
	from, to = domain.Day(from), domain.Day(to)
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}
	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return sign * count
}

// Holidays returns the configured holidays ordered by date.
func (c *Calendar) Holidays() []domain.Holiday {
	keys := make([]string, 0, len(c.holidays))
	for k := range c.holidays {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]domain.Holiday, 0, len(keys))
	for _, k := range keys {
		d, _ := time.Parse(domain.DateLayout, k)
		out = append(out, domain.Holiday{Date: d, Name: c.holidays[k]})
	}
	return out
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekdays converts names such as "saturday" or "Sun" into weekdays.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		out = append(out, wd)
	}
	return out, nil
}
