package osched

import (
	"context"

	"github.com/google/uuid"
	"nimbus/internal/schedule"
	"nimbus/internal/types"
)

type (
	// Adapter registers the generated runner script with the platform's
	// native task scheduler. The schedule calculator never depends on
	// which implementation is active; a failed registration is reported
	// but does not affect next-run computation.
	Adapter interface {
		Register(ctx context.Context, profile *types.Profile, spec schedule.TriggerSpec, scriptPath string) error
		Unregister(ctx context.Context, profileID uuid.UUID) error
	}

	// CommandRunner shells out to launchctl/systemctl/schtasks. The error
	// covers spawn failures only; scheduler exit codes are inspected by
	// the adapters themselves.
	CommandRunner interface {
		Run(ctx context.Context, bin string, args ...string) (exitCode int, stderr string, err error)
	}
)

// ForPlatform picks the adapter for the given GOOS, falling back to the
// in-process cron adapter on platforms without a native scheduler.
func ForPlatform(goos, homeDir string, runner CommandRunner) Adapter {
	switch goos {
	case "darwin":
		return NewLaunchd(homeDir, runner)
	case "linux":
		return NewSystemd(homeDir, runner)
	case "windows":
		return NewSchtasks(runner)
	default:
		return NewCronFallback(runner)
	}
}
