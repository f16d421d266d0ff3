// Package timefmt renders ticket timestamps for display: a relative phrase
// such as "3 hours ago" plus short and long absolute forms.
package timefmt

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/spec-kit/ticket-desk/internal/clock"
)

const (
	// AbsoluteLayout renders like "Oct 15, 2026, 03:04 PM".
	AbsoluteLayout = "Jan 2, 2006, 03:04 PM"
	// FullLayout renders like "October 15, 2026 at 03:04:05 PM UTC".
	FullLayout = "January 2, 2006 at 03:04:05 PM MST"

	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// Display holds the three renderings of one timestamp.
type Display struct {
	Relative string `json:"relative"`
	Absolute string `json:"absolute"`
	Full     string `json:"full"`
}

// Buckets are floored: 90 minutes is "1 hour ago". The month and year
// buckets use 30- and 365-day units, so 28-29 days reads "0 months ago"
// and 360-364 days reads "0 years ago".
var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: 2 * time.Second, Format: "Just now", DivBy: time.Second},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: day},
	{D: week, Format: "%d days %s", DivBy: day},
	{D: 2 * week, Format: "1 week %s", DivBy: week},
	{D: 4 * week, Format: "%d weeks %s", DivBy: week},
	{D: month, Format: "%d months %s", DivBy: month},
	{D: 2 * month, Format: "1 month %s", DivBy: month},
	{D: 12 * month, Format: "%d months %s", DivBy: month},
	{D: year, Format: "%d years %s", DivBy: year},
	{D: 2 * year, Format: "1 year %s", DivBy: year},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: year},
}

// Format renders ts as seen at now. Absolute forms use loc; a nil loc
// means UTC. Timestamps in the future count as zero elapsed.
func Format(ts, now time.Time, loc *time.Location) Display {
	if loc == nil {
		loc = time.UTC
	}
	local := ts.In(loc)
	return Display{
		Relative: Relative(ts, now),
		Absolute: local.Format(AbsoluteLayout),
		Full:     local.Format(FullLayout),
	}
}

// FormatString parses an ISO-8601 timestamp and formats it.
func FormatString(iso string, now time.Time, loc *time.Location) (Display, error) {
	ts, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return Display{}, fmt.Errorf("timefmt: parse %q: %w", iso, err)
	}
	return Format(ts, now, loc), nil
}

// Relative returns only the relative phrase.
func Relative(ts, now time.Time) string {
	if ts.After(now) {
		ts = now
	}
	return humanize.CustomRelTime(ts, now, "ago", "from now", relativeMagnitudes)
}

// IsRecent reports whether ts is less than an hour old.
func IsRecent(ts, now time.Time) bool {
	return now.Sub(ts) < time.Hour
}

// DetailedAgo is the activity-feed phrasing. Anything a week or older is
// shown as a date, with the year only when it differs from now's.
func DetailedAgo(ts, now time.Time) string {
	diff := now.Sub(ts)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < day:
		return plural(int(diff/time.Hour), "hour")
	case diff < week:
		return plural(int(diff/day), "day")
	}
	if ts.Year() != now.Year() {
		return ts.Format("Jan 2, 2006")
	}
	return ts.Format("Jan 2")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Formatter formats against a clock in a fixed display location.
type Formatter struct {
	clock clock.Clock
	loc   *time.Location
}

// NewFormatter returns a Formatter. A nil loc means UTC.
func NewFormatter(clk clock.Clock, loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{clock: clk, loc: loc}
}

// Format renders ts as seen now.
func (f Formatter) Format(ts time.Time) Display {
	return Format(ts, f.clock.Now(), f.loc)
}

// Now reads the formatter's clock.
func (f Formatter) Now() time.Time { return f.clock.Now() }

// Location returns the display location.
func (f Formatter) Location() *time.Location { return f.loc }
