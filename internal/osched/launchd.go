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

type launchd struct {
	homeDir string
	runner  CommandRunner
}

// NewLaunchd writes a LaunchAgent plist per profile and loads it with
// launchctl.
func NewLaunchd(homeDir string, runner CommandRunner) Adapter {
	return &launchd{homeDir: homeDir, runner: runner}
}

func (l *launchd) Register(ctx context.Context, profile *types.Profile, spec schedule.TriggerSpec, scriptPath string) error {
	plistPath := l.plistPath(profile.ID)
	if err := os.MkdirAll(filepath.Dir(plistPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create LaunchAgents directory")
	}

	content := renderPlist(launchdLabel(profile.ID), scriptPath, calendarInterval(spec))
	if err := os.WriteFile(plistPath, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", plistPath)
	}

	// unload a previous registration first, load -w fails on a loaded job
	_, _, _ = l.runner.Run(ctx, "launchctl", "unload", "-w", plistPath)

	code, stderr, err := l.runner.Run(ctx, "launchctl", "load", "-w", plistPath)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.Errorf("launchctl load failed: %s", stderr)
	}
	return nil
}

func (l *launchd) Unregister(ctx context.Context, profileID uuid.UUID) error {
	plistPath := l.plistPath(profileID)
	if _, err := os.Stat(plistPath); os.IsNotExist(err) {
		return nil
	}

	_, _, _ = l.runner.Run(ctx, "launchctl", "unload", "-w", plistPath)
	if err := os.Remove(plistPath); err != nil {
		return errors.Wrapf(err, "failed to remove %s", plistPath)
	}
	return nil
}

func (l *launchd) plistPath(profileID uuid.UUID) string {
	return filepath.Join(l.homeDir, "Library", "LaunchAgents", launchdLabel(profileID)+".plist")
}

func launchdLabel(profileID uuid.UUID) string {
	return fmt.Sprintf("com.nimbus.backup-%s", profileID)
}

func calendarInterval(spec schedule.TriggerSpec) string {
	switch spec.Frequency {
	case types.FrequencyWeekly:
		return fmt.Sprintf("<dict><key>Weekday</key><integer>%d</integer><key>Hour</key><integer>%d</integer><key>Minute</key><integer>%d</integer></dict>",
			spec.Weekday, spec.Hour, spec.Minute)
	case types.FrequencyMonthly:
		return fmt.Sprintf("<dict><key>Day</key><integer>%d</integer><key>Hour</key><integer>%d</integer><key>Minute</key><integer>%d</integer></dict>",
			spec.DayOfMonth, spec.Hour, spec.Minute)
	default:
		return fmt.Sprintf("<dict><key>Hour</key><integer>%d</integer><key>Minute</key><integer>%d</integer></dict>",
			spec.Hour, spec.Minute)
	}
}

func renderPlist(label, scriptPath, interval string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
        <string>%s</string>
    </array>
    <key>StartCalendarInterval</key>
    %s
    <key>StandardOutPath</key>
    <string>/tmp/%s.out</string>
    <key>StandardErrorPath</key>
    <string>/tmp/%s.err</string>
</dict>
</plist>
`, label, scriptPath, interval, label, label)
}
