package osched

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"nimbus/internal/schedule"
	"nimbus/internal/types"
)

type systemd struct {
	homeDir string
	runner  CommandRunner
}

// NewSystemd writes a user-level service+timer unit pair per profile and
// enables the timer with systemctl --user.
func NewSystemd(homeDir string, runner CommandRunner) Adapter {
	return &systemd{homeDir: homeDir, runner: runner}
}

var systemdWeekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (s *systemd) Register(ctx context.Context, profile *types.Profile, spec schedule.TriggerSpec, scriptPath string) error {
	unitDir := filepath.Join(s.homeDir, ".config", "systemd", "user")
	if err := os.MkdirAll(unitDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create systemd user directory")
	}

	name := systemdUnitName(profile.ID)

	service := fmt.Sprintf(`[Unit]
Description=nimbus scheduled backup for profile %s

[Service]
Type=oneshot
ExecStart=%s
`, profile.Name, scriptPath)

	timer := fmt.Sprintf(`[Unit]
Description=nimbus backup timer for profile %s

[Timer]
OnCalendar=%s
Persistent=true

[Install]
WantedBy=timers.target
`, profile.Name, OnCalendar(spec))

	if err := os.WriteFile(filepath.Join(unitDir, name+".service"), []byte(service), 0644); err != nil {
		return errors.Wrap(err, "failed to write service unit")
	}
	if err := os.WriteFile(filepath.Join(unitDir, name+".timer"), []byte(timer), 0644); err != nil {
		return errors.Wrap(err, "failed to write timer unit")
	}

	if code, stderr, err := s.runner.Run(ctx, "systemctl", "--user", "daemon-reload"); err != nil {
		return err
	} else if code != 0 {
		return errors.Errorf("systemctl daemon-reload failed: %s", stderr)
	}

	code, stderr, err := s.runner.Run(ctx, "systemctl", "--user", "enable", "--now", name+".timer")
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.Errorf("systemctl enable failed: %s", stderr)
	}
	return nil
}

func (s *systemd) Unregister(ctx context.Context, profileID uuid.UUID) error {
	name := systemdUnitName(profileID)
	_, _, _ = s.runner.Run(ctx, "systemctl", "--user", "disable", "--now", name+".timer")

	unitDir := filepath.Join(s.homeDir, ".config", "systemd", "user")
	for _, suffix := range []string{".service", ".timer"} {
		path := filepath.Join(unitDir, name+suffix)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to remove %s", path)
		}
	}

	_, _, _ = s.runner.Run(ctx, "systemctl", "--user", "daemon-reload")
	return nil
}

func systemdUnitName(profileID uuid.UUID) string {
	return fmt.Sprintf("nimbus-backup-%s", profileID)
}

// OnCalendar renders the systemd calendar expression for a trigger.
func OnCalendar(spec schedule.TriggerSpec) string {
	switch spec.Frequency {
	case types.FrequencyWeekly:
		return fmt.Sprintf("%s *-*-* %02d:%02d:00", systemdWeekdays[spec.Weekday%7], spec.Hour, spec.Minute)
	case types.FrequencyMonthly:
		return fmt.Sprintf("*-*-%02d %02d:%02d:00", spec.DayOfMonth, spec.Hour, spec.Minute)
	default:
		return fmt.Sprintf("*-*-* %02d:%02d:00", spec.Hour, spec.Minute)
	}
}
