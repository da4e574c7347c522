package model

import (
    "errors"
    "fmt"
    "strconv"
    "time"
)

// ServiceYear anchors every moment.  Timetables only carry month/day, so
// all arithmetic (crossing midnight, month ends) happens inside this year
// and spills into the next one when a run crosses December 31st.
const ServiceYear = 2025

// MomentLayout is the canonical text form of a moment: "HH:MM_MM-DD".
// Stores key inventory rows by this string.
const MomentLayout = "15:04_01-02"

// DateLayout is the text form of a calendar date: "MM-DD".
const DateLayout = "01-02"

// ClockLayout is the text form of a time of day: "HH:MM".
const ClockLayout = "15:04"

// ErrBadMoment is returned for any unparsable moment, date or clock value.
var ErrBadMoment = errors.New("malformed time")

// ParseMoment parses "HH:MM_MM-DD" or "HH:MM MM-DD".
func ParseMoment(s string) (time.Time, error) {
    if len(s) != 11 || s[2] != ':' || (s[5] != '_' && s[5] != ' ') {
        return time.Time{}, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    hour, min, err := parseClock(s[:5])
    if err != nil {
        return time.Time{}, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    date, err := ParseDate(s[6:])
    if err != nil {
        return time.Time{}, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    return date.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute), nil
}

// ParseDate parses "MM-DD" into midnight of that day in the service year.
func ParseDate(s string) (time.Time, error) {
    if len(s) != 5 || s[2] != '-' {
        return time.Time{}, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    mon, err1 := strconv.Atoi(s[:2])
    day, err2 := strconv.Atoi(s[3:])
    if err1 != nil || err2 != nil || mon < 1 || mon > 12 || day < 1 {
        return time.Time{}, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    t := time.Date(ServiceYear, time.Month(mon), day, 0, 0, 0, 0, time.UTC)
    // time.Date normalizes 02-30 into March; reject instead.
    if t.Day() != day {
        return time.Time{}, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    return t, nil
}

// ParseClock parses "HH:MM" into a duration since midnight.
func ParseClock(s string) (time.Duration, error) {
    hour, min, err := parseClock(s)
    if err != nil {
        return 0, fmt.Errorf("%w: %q", ErrBadMoment, s)
    }
    return time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute, nil
}

func parseClock(s string) (int, int, error) {
    if len(s) != 5 || s[2] != ':' {
        return 0, 0, ErrBadMoment
    }
    hour, err1 := strconv.Atoi(s[:2])
    min, err2 := strconv.Atoi(s[3:])
    if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
        return 0, 0, ErrBadMoment
    }
    return hour, min, nil
}

// FormatMoment renders t as "HH:MM_MM-DD".
func FormatMoment(t time.Time) string { return t.UTC().Format(MomentLayout) }

// FormatDate renders the calendar date of t as "MM-DD".
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// FormatClock renders a duration since midnight as "HH:MM".
func FormatClock(d time.Duration) string {
    m := int(d / time.Minute)
    return fmt.Sprintf("%02d:%02d", (m/60)%24, m%60)
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
