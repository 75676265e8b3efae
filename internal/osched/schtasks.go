package osched

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"nimbus/internal/schedule"
	"nimbus/internal/types"
)

type schtasks struct {
	runner CommandRunner
}

// NewSchtasks registers the runner script with the Windows Task Scheduler
// via the schtasks command.
func NewSchtasks(runner CommandRunner) Adapter {
	return &schtasks{runner: runner}
}

var schtasksWeekdays = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

func (s *schtasks) Register(ctx context.Context, profile *types.Profile, spec schedule.TriggerSpec, scriptPath string) error {
	args := []string{
		"/Create",
		"/TN", taskName(profile.ID),
		"/TR", scriptPath,
		"/ST", fmt.Sprintf("%02d:%02d", spec.Hour, spec.Minute),
		"/F",
	}

	switch spec.Frequency {
	case types.FrequencyWeekly:
		args = append(args, "/SC", "WEEKLY", "/D", schtasksWeekdays[spec.Weekday%7])
	case types.FrequencyMonthly:
		args = append(args, "/SC", "MONTHLY", "/D", fmt.Sprintf("%d", spec.DayOfMonth))
	default:
		args = append(args, "/SC", "DAILY")
	}

	code, stderr, err := s.runner.Run(ctx, "schtasks", args...)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.Errorf("schtasks create failed: %s", stderr)
	}
	return nil
}

func (s *schtasks) Unregister(ctx context.Context, profileID uuid.UUID) error {
	code, stderr, err := s.runner.Run(ctx, "schtasks", "/Delete", "/TN", taskName(profileID), "/F")
	if err != nil {
		return err
	}
	// the task may have never been registered
	if code != 0 && stderr != "" {
		return errors.Errorf("schtasks delete failed: %s", stderr)
	}
	return nil
}

func taskName(profileID uuid.UUID) string {
	return fmt.Sprintf("nimbus-backup-%s", profileID)
}
