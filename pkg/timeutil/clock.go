package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// ClockLayout is the wall-clock format used by access schedules.
	ClockLayout = "15:04"
	// LabelLayout stamps bandwidth samples.
	LabelLayout = "15:04:05"
)

var clockPattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

// Clock is a time of day with minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (a single-digit hour is accepted) into a Clock.
func ParseClock(input string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(input)
	if len(m) != 3 {
		return Clock{}, fmt.Errorf("invalid clock %q, want HH:MM", strings.TrimSpace(input))
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return Clock{}, fmt.Errorf("invalid clock %q, out of range", strings.TrimSpace(input))
	}
	return Clock{Hour: h, Minute: mm}, nil
}

// ClockOf returns the wall-clock component of t.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// String renders the zero-padded HH:MM form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

// InWindow reports whether now falls inside the access window [start, end).
// When start is not before end the window wraps past midnight, so an equal
// start and end cover the whole day.
func InWindow(start, end string, now time.Time) (bool, error) {
	s, err := ParseClock(start)
	if err != nil {
		return false, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return false, err
	}
	cur := ClockOf(now).minutes()
	if s.minutes() < e.minutes() {
		return s.minutes() <= cur && cur < e.minutes(), nil
	}
	return cur >= s.minutes() || cur < e.minutes(), nil
}

// NormalizeClock parses input and returns it in canonical HH:MM form.
func NormalizeClock(input string) (string, error) {
	c, err := ParseClock(input)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// NormalizeWindow normalizes both ends of an access window. Two blank ends
// clear the window and come back as empty strings; one blank end is an error.
func NormalizeWindow(start, end string) (string, string, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return "", "", nil
	}
	s, err := NormalizeClock(start)
	if err != nil {
		return "", "", fmt.Errorf("start: %w", err)
	}
	e, err := NormalizeClock(end)
	if err != nil {
		return "", "", fmt.Errorf("end: %w", err)
	}
	return s, e, nil
}
