package schedule

import (
	"fmt"

	"nimbus/internal/types"
)

type (
	// TriggerSpec is the platform-neutral description of when the OS
	// scheduler should fire. Weekday and DayOfMonth are only set for
	// weekly and monthly frequencies respectively.
	TriggerSpec struct {
		Frequency  types.FrequencyKind
		Hour       int
		Minute     int
		Weekday    int
		DayOfMonth int
	}
)

// Trigger converts a schedule into the trigger description handed to OS
// scheduler adapters.
func Trigger(s types.Schedule) (TriggerSpec, error) {
	hour, minute, err := ParseClock(s.Time)
	if err != nil {
		return TriggerSpec{}, err
	}
	return TriggerSpec{
		Frequency:  s.Frequency.Kind,
		Hour:       hour,
		Minute:     minute,
		Weekday:    s.Frequency.Weekday,
		DayOfMonth: s.Frequency.DayOfMonth,
	}, nil
}

// CronExpr renders the trigger as a five-field cron expression, used by the
// in-process fallback adapter on platforms without a native scheduler.
func (t TriggerSpec) CronExpr() string {
	switch t.Frequency {
	case types.FrequencyWeekly:
		return fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, t.Weekday)
	case types.FrequencyMonthly:
		return fmt.Sprintf("%d %d %d * *", t.Minute, t.Hour, t.DayOfMonth)
	default:
		return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
	}
}
