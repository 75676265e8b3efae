package types

import (
	"time"
)

type (
	FrequencyKind string

	// Frequency is the recurrence rule of a Schedule. Weekday is only
	// meaningful for weekly schedules (0 = Sunday), DayOfMonth (1-31)
	// only for monthly ones.
	Frequency struct {
		Kind       FrequencyKind `json:"kind"`
		Weekday    int           `json:"weekday,omitempty"`
		DayOfMonth int           `json:"day_of_month,omitempty"`
	}

	Schedule struct {
		Enabled   bool       `json:"enabled"`
		Frequency Frequency  `json:"frequency"`
		Time      string     `json:"time"` // HH:MM, local wall clock
		LastRun   *time.Time `json:"last_run,omitempty"`
		NextRun   *time.Time `json:"next_run,omitempty"`
	}
)

const (
	FrequencyDaily   FrequencyKind = "daily"
	FrequencyWeekly  FrequencyKind = "weekly"
	FrequencyMonthly FrequencyKind = "monthly"
)

func (f FrequencyKind) String() string {
	return string(f)
}

func Daily() Frequency {
	return Frequency{Kind: FrequencyDaily}
}

func Weekly(weekday int) Frequency {
	return Frequency{Kind: FrequencyWeekly, Weekday: weekday}
}

func Monthly(dayOfMonth int) Frequency {
	return Frequency{Kind: FrequencyMonthly, DayOfMonth: dayOfMonth}
}
