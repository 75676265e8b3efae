package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"nimbus/internal/types"
)

var (
	// ErrInvalidTime means the schedule's HH:MM could not be parsed. It is
	// never silently substituted with a default.
	ErrInvalidTime = errors.New("invalid schedule time, expected HH:MM")

	// ErrNoOccurrence means the frequency has no valid occurrence to offer,
	// e.g. a monthly day-of-month that exists neither in the current nor in
	// the next month. Distinct from a disabled schedule, which yields no
	// error and no instant.
	ErrNoOccurrence = errors.New("schedule has no valid next occurrence")
)

// NextRun computes the earliest future occurrence of the schedule, strictly
// after now. All wall-clock arithmetic happens in now's location so a
// schedule set for "09:00" keeps firing at local 9 AM across DST shifts;
// the resulting instant is returned in UTC.
//
// During a DST gap or overlap time.Date resolves the wall-clock time to a
// single deterministic instant, and that mapping is what we store.
//
// A disabled schedule yields (nil, nil): there is never a next run to show.
func NextRun(s types.Schedule, now time.Time) (*time.Time, error) {
	if !s.Enabled {
		return nil, nil
	}

	hour, minute, err := ParseClock(s.Time)
	if err != nil {
		return nil, err
	}

	loc := now.Location()
	year, month, day := now.Date()

	switch s.Frequency.Kind {
	case types.FrequencyDaily:
		candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)
		if !candidate.After(now) {
			candidate = time.Date(year, month, day+1, hour, minute, 0, 0, loc)
		}
		return utc(candidate), nil

	case types.FrequencyWeekly:
		daysUntil := (s.Frequency.Weekday - int(now.Weekday()) + 7) % 7
		if daysUntil == 0 {
			candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)
			if candidate.After(now) {
				return utc(candidate), nil
			}
			daysUntil = 7
		}
		candidate := time.Date(year, month, day+daysUntil, hour, minute, 0, 0, loc)
		return utc(candidate), nil

	case types.FrequencyMonthly:
		target := s.Frequency.DayOfMonth
		if target < 1 || target > 31 {
			return nil, errors.Errorf("day of month %d out of range", target)
		}

		if target >= day {
			candidate := time.Date(year, month, target, hour, minute, 0, 0, loc)
			// time.Date normalizes Apr 31 into May 1; a shifted day means
			// the date does not exist in this month
			if candidate.Day() == target && candidate.After(now) {
				return utc(candidate), nil
			}
		}

		nextYear, nextMonth := year, month+1
		if month == time.December {
			nextYear, nextMonth = year+1, time.January
		}
		candidate := time.Date(nextYear, nextMonth, target, hour, minute, 0, 0, loc)
		if candidate.Day() != target {
			return nil, ErrNoOccurrence
		}
		return utc(candidate), nil

	default:
		return nil, errors.Errorf("unknown frequency %q", s.Frequency.Kind)
	}
}

// ParseClock parses a 24-hour "HH:MM" wall-clock time.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTime
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}

func utc(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
