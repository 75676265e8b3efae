package reconcile

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"nimbus/internal/config"
	"nimbus/internal/schedule"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

// DuplicateWindow is the started_at proximity below which a parsed
// operation is considered the same run as an already-persisted one. It
// absorbs the jitter between the log's second-resolution timestamps and
// the system clock reads taken when a run was recorded directly.
const DuplicateWindow = 60 * time.Second

type (
	// Reconciler derives BackupOperation records from a profile's raw log
	// file, deduplicates them against persisted history and refreshes the
	// schedule's last_run/next_run bookkeeping. Sync returns the number of
	// newly persisted operations.
	Reconciler interface {
		Sync(ctx context.Context, profileID uuid.UUID) (int, error)
	}

	reconciler struct {
		st       store.Store
		cfg      config.Config
		location *time.Location
		now      func() time.Time
	}
)

func NewReconciler(st store.Store, cfg config.Config) Reconciler {
	return &reconciler{
		st:       st,
		cfg:      cfg,
		location: time.Local,
		now:      time.Now,
	}
}

func (r *reconciler) Sync(ctx context.Context, profileID uuid.UUID) (int, error) {
	logPath := r.cfg.ProfileLogFile(profileID)

	content, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		// nothing has run yet, nothing to sync
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read backup log for profile %s at %s", profileID, logPath)
	}

	existing, err := r.st.OperationsForProfile(ctx, profileID)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load operation history for profile %s", profileID)
	}

	parsed := newParser(profileID, r.location, r.now).parse(string(content))

	created := 0
	fresh := make([]*types.BackupOperation, 0, len(parsed))
	for _, op := range parsed {
		if r.isDuplicate(existing, op) {
			logger.Debug("operation already recorded, skipping duplicate",
				zap.String("profile_id", profileID.String()),
				zap.Time("started_at", op.StartedAt))
		} else {
			fresh = append(fresh, op)
			created++
		}

		// duplicates still refresh the schedule: a run may have been
		// recorded before last_run/next_run bookkeeping existed
		if err := r.updateScheduleAfterRun(ctx, profileID, op.StartedAt); err != nil {
			return created, err
		}
	}

	if err := r.st.AppendOperations(ctx, fresh...); err != nil {
		return 0, errors.Wrapf(err, "failed to persist operations for profile %s", profileID)
	}

	if created > 0 {
		logger.Info("reconciled scheduled backup logs",
			zap.String("profile_id", profileID.String()),
			zap.Int("new_operations", created))
	}
	return created, nil
}

func (r *reconciler) isDuplicate(existing []*types.BackupOperation, candidate *types.BackupOperation) bool {
	for _, op := range existing {
		diff := op.StartedAt.Sub(candidate.StartedAt)
		if diff < 0 {
			diff = -diff
		}
		if diff < DuplicateWindow {
			return true
		}
	}
	return false
}

func (r *reconciler) updateScheduleAfterRun(ctx context.Context, profileID uuid.UUID, startedAt time.Time) error {
	return r.st.Update(ctx, func(state *types.AppState) error {
		profile := state.FindProfile(profileID)
		if profile == nil || profile.Schedule == nil || !profile.Schedule.Enabled {
			return nil
		}

		lastRun := startedAt
		profile.Schedule.LastRun = &lastRun

		next, err := schedule.NextRun(*profile.Schedule, r.now())
		if err != nil && !errors.Is(err, schedule.ErrNoOccurrence) {
			return errors.Wrapf(err, "failed to compute next run for profile %s", profileID)
		}
		profile.Schedule.NextRun = next
		profile.UpdatedAt = r.now().UTC()
		state.UpdatedAt = profile.UpdatedAt
		return nil
	})
}
