// Package timeutil normalizes the loose date and time strings that arrive
// in function-call arguments and converts local wall-clock values to UTC.
package timeutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// DateTime is a date and HH:MM time pair in one zone.
type DateTime struct {
	Date string
	Time string
}

// NormalizeTime accepts H:MM or HH:MM and returns zero-padded HH:MM.
// Anything else (seconds, "9am", "0930") is rejected, not coerced.
func NormalizeTime(raw string) (string, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return "", false
	}
	return twoDigits(h) + ":" + twoDigits(mm), true
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ValidToday reports whether raw is a real calendar date in YYYY-MM-DD form.
func ValidToday(raw string) bool {
	if !datePattern.MatchString(raw) {
		return false
	}
	_, err := time.Parse(DateLayout, raw)
	return err == nil
}

// LoadZone resolves an IANA zone name. Empty and unknown names fail.
func LoadZone(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

var relativeDays = map[string]int{
	"today":     0,
	"hoy":       0,
	"tomorrow":  1,
	"mañana":    1,
	"manana":    1,
	"yesterday": -1,
	"ayer":      -1,
}

// NormalizeDate accepts YYYY-MM-DD or a relative day word resolved against
// today (itself YYYY-MM-DD).
func NormalizeDate(raw, today string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if ValidToday(raw) {
		return raw, true
	}
	offset, ok := relativeDays[raw]
	if !ok {
		return "", false
	}
	base, err := time.Parse(DateLayout, today)
	if err != nil {
		return "", false
	}
	return base.AddDate(0, 0, offset).Format(DateLayout), true
}

// LocalToUTC reads date and hhmm as wall-clock time in tz and returns the
// UTC date and time. It fails when tz is missing or unknown, or the inputs
// don't parse; callers then store the values as already-UTC.
func LocalToUTC(date, hhmm, tz string) (DateTime, bool) {
	loc, ok := LoadZone(tz)
	if !ok {
		return DateTime{}, false
	}
	return convert(date, hhmm, loc, time.UTC)
}

// UTCToLocal is the inverse of LocalToUTC.
func UTCToLocal(date, hhmm, tz string) (DateTime, bool) {
	loc, ok := LoadZone(tz)
	if !ok {
		return DateTime{}, false
	}
	return convert(date, hhmm, time.UTC, loc)
}

func convert(date, hhmm string, from, to *time.Location) (DateTime, bool) {
	t, ok := NormalizeTime(hhmm)
	if !ok || !ValidToday(date) {
		return DateTime{}, false
	}
	instant, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+t, from)
	if err != nil {
		return DateTime{}, false
	}
	out := instant.In(to)
	return DateTime{Date: out.Format(DateLayout), Time: out.Format(TimeLayout)}, true
}

// Today returns the current date in loc, or in UTC when loc is nil.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
