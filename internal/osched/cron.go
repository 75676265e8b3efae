package osched

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"nimbus/internal/schedule"
	"nimbus/internal/types"
	"nimbus/logger"
)

type cronFallback struct {
	runner  CommandRunner
	cr      *cron.Cron
	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID
}

// NewCronFallback keeps schedules alive inside the server process on
// platforms without launchd, systemd or schtasks. Entries do not survive
// a restart; they are re-registered from the stored schedules at boot.
func NewCronFallback(runner CommandRunner) Adapter {
	c := cron.New()
	c.Start()
	return &cronFallback{
		runner:  runner,
		cr:      c,
		entries: make(map[uuid.UUID]cron.EntryID),
	}
}

func (c *cronFallback) Register(ctx context.Context, profile *types.Profile, spec schedule.TriggerSpec, scriptPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.entries[profile.ID]; ok {
		c.cr.Remove(id)
		delete(c.entries, profile.ID)
	}

	profileID := profile.ID
	id, err := c.cr.AddFunc(spec.CronExpr(), func() {
		code, stderr, err := c.runner.Run(context.Background(), scriptPath)
		if err != nil || code != 0 {
			logger.Error("scheduled backup script failed",
				zap.String("profile_id", profileID.String()),
				zap.Int("exit_code", code),
				zap.String("stderr", stderr),
				zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to register cron entry")
	}
	c.entries[profile.ID] = id
	return nil
}

func (c *cronFallback) Unregister(_ context.Context, profileID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.entries[profileID]; ok {
		c.cr.Remove(id)
		delete(c.entries, profileID)
	}
	return nil
}
