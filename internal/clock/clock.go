package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DayLayout is the format of a day key (ISO-8601 calendar date).
const DayLayout = "2006-01-02"

// Clock resolves "now" and calendar days in a single fixed timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// NewFixed returns a clock frozen at the given instant.
func NewFixed(loc *time.Location, at time.Time) *Clock {
	c := New(loc)
	c.now = func() time.Time { return at }
	return c
}

// LoadLocation resolves an IANA zone name, falling back to UTC for an empty name.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the day key of the current instant.
func (c *Clock) Today() string {
	return c.DayKey(c.now())
}

func (c *Clock) DayKey(t time.Time) string {
	return t.In(c.loc).Format(DayLayout)
}

// Bounds returns midnight of the given day in the clock's zone and that instant
// plus 24 hours. It also serves as the day-key validator.
func (c *Clock) Bounds(dayKey string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DayLayout, dayKey, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse day key %q: %w", dayKey, err)
	}
	return start, start.Add(24 * time.Hour), nil
}

// LastDays returns the n calendar days ending today, oldest first.
func (c *Clock) LastDays(n int) []time.Time {
	if n <= 0 {
		return nil
	}
	y, m, d := c.Now().Date()
	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, time.Date(y, m, d-i, 0, 0, 0, 0, c.loc))
	}
	return days
}

// PrevDay returns the day key immediately before the given one.
func PrevDay(dayKey string) (string, error) {
	t, err := time.Parse(DayLayout, dayKey)
	if err != nil {
		return "", fmt.Errorf("parse day key %q: %w", dayKey, err)
	}
	return t.AddDate(0, 0, -1).Format(DayLayout), nil
}
