// Package clock answers "what day is it" and formats timestamps in the
// service's reference timezone.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the storage format of ride dates.
const DateLayout = "2006-01-02"

// DisplayLayout is the user-facing timestamp format.
const DisplayLayout = "01-02-2006 03:04 PM"

// Clock is a timezone-bound clock.
type Clock struct {
	loc    *time.Location
	suffix string
	now    func() time.Time
}

// New loads the named IANA zone. The display suffix is "PT" for the Pacific
// zones and the zone abbreviation otherwise.
func New(zone string) (*Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return &Clock{loc: loc, suffix: suffixFor(zone), now: time.Now}, nil
}

// Fixed returns a clock that always reports t. Used in tests.
func Fixed(zone string, t time.Time) (*Clock, error) {
	c, err := New(zone)
	if err != nil {
		return nil, err
	}
	c.now = func() time.Time { return t }
	return c, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the reference zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// Display formats t for users, e.g. "06-01-2025 09:30 AM PT".
func (c *Clock) Display(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.loc).Format(DisplayLayout) + " " + c.suffix
}

func suffixFor(zone string) string {
	switch zone {
	case "America/Los_Angeles", "US/Pacific", "PST8PDT":
		return "PT"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return zone
	}
	abbr, _ := time.Now().In(loc).Zone()
	return abbr
}
