package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"nimbus/internal/eventbus"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/schedule"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

// previewConcurrency caps parallel dry-runs across a profile's sources.
const previewConcurrency = 4

type (
	BackupService interface {
		Run(ctx context.Context, profileID uuid.UUID) (*types.BackupOperation, error)
		Preview(ctx context.Context, profileID uuid.UUID) (*types.BackupPreview, error)
		Restore(ctx context.Context, params types.RestoreParams) (*types.BackupOperation, error)
		ListFiles(ctx context.Context, profileID uuid.UUID, subPath string, maxDepth int) ([]types.CloudFile, error)
		History(ctx context.Context, profileID uuid.UUID) ([]*types.BackupOperation, error)
		ClearHistory(ctx context.Context) (int, error)
	}

	backupService struct {
		st           store.Store
		rcloneClient rclone.Client
		bus          eventbus.Bus
		now          func() time.Time
	}
)

func NewBackupService(st store.Store, rc rclone.Client, bus eventbus.Bus) BackupService {
	return &backupService{
		st:           st,
		rcloneClient: rc,
		bus:          bus,
		now:          time.Now,
	}
}

func (b *backupService) Run(ctx context.Context, profileID uuid.UUID) (*types.BackupOperation, error) {
	profile, err := b.findProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := checkSources(profile.Sources); err != nil {
		return nil, err
	}

	op := &types.BackupOperation{
		ID:            uuid.New(),
		ProfileID:     profile.ID,
		OperationType: types.OperationBackup,
		Status:        types.StatusRunning,
		StartedAt:     b.now().UTC(),
	}
	b.bus.Publish(profile.ID.String(), eventbus.BackupStarted,
		fmt.Sprintf("backup started for profile %s", profile.Name))

	var log strings.Builder
	for _, source := range profile.Sources {
		out, err := b.rcloneClient.Transfer(ctx, profile, source, false)
		log.WriteString(out.Stdout)
		log.WriteString(out.Stderr)

		if err != nil || !out.Success {
			op.Status = types.StatusFailed
			if ctx.Err() != nil {
				op.Status = types.StatusCancelled
			}
			op.ErrorMessage = transferError(source, out, err)
			break
		}

		files, bytes := rclone.StatsFromOutput(out.Stdout + out.Stderr)
		op.FilesTransferred += files
		op.BytesTransferred += bytes
		b.bus.Publish(profile.ID.String(), eventbus.BackupProgress,
			fmt.Sprintf("finished %s", source))
	}

	op.LogOutput = log.String()
	completed := b.now().UTC()
	op.CompletedAt = &completed
	if op.Status == types.StatusRunning {
		op.Status = types.StatusCompleted
	}

	if err := b.st.AppendOperations(ctx, op); err != nil {
		return nil, err
	}

	if op.Status == types.StatusCompleted {
		if err := b.markScheduleRun(ctx, profile.ID, op.StartedAt); err != nil {
			logger.Error("failed to update schedule after backup",
				zap.String("profile_id", profile.ID.String()), zap.Error(err))
		}
		b.bus.Publish(profile.ID.String(), eventbus.BackupCompleted,
			fmt.Sprintf("backup completed: %d files, %d bytes", op.FilesTransferred, op.BytesTransferred))
	} else {
		b.bus.Publish(profile.ID.String(), eventbus.BackupFailed, op.ErrorMessage)
	}

	logger.Info("backup finished",
		zap.String("profile_id", profile.ID.String()),
		zap.String("status", op.Status.String()),
		zap.Uint64("files", op.FilesTransferred),
		zap.Uint64("bytes", op.BytesTransferred))
	return op, nil
}

// Preview dry-runs every source concurrently and merges the planned changes.
func (b *backupService) Preview(ctx context.Context, profileID uuid.UUID) (*types.BackupPreview, error) {
	profile, err := b.findProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		changes []types.FileChange
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(previewConcurrency)

	for _, source := range profile.Sources {
		source := source
		group.Go(func() error {
			out, err := b.rcloneClient.Transfer(groupCtx, profile, source, true)
			if err != nil {
				return err
			}
			if !out.Success {
				return errors.Errorf("dry-run failed for %s: %s", source, strings.TrimSpace(out.Stderr))
			}

			mu.Lock()
			changes = append(changes, rclone.ParseDryRun(out.Stdout+out.Stderr)...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	preview := &types.BackupPreview{
		FilesToCopy:   make([]types.FileChange, 0),
		FilesToUpdate: make([]types.FileChange, 0),
		FilesToDelete: make([]types.FileChange, 0),
	}
	for _, change := range changes {
		switch change.Action {
		case types.ActionUpdate:
			preview.FilesToUpdate = append(preview.FilesToUpdate, change)
		case types.ActionDelete:
			preview.FilesToDelete = append(preview.FilesToDelete, change)
		default:
			preview.FilesToCopy = append(preview.FilesToCopy, change)
		}
		if change.Action != types.ActionDelete {
			preview.TotalFiles++
			preview.TotalSize += uint64(change.Size)
		}
	}
	return preview, nil
}

func (b *backupService) Restore(ctx context.Context, params types.RestoreParams) (*types.BackupOperation, error) {
	profile, err := b.findProfile(ctx, params.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := checkRestoreTarget(params.LocalTarget); err != nil {
		return nil, err
	}

	op := &types.BackupOperation{
		ID:            uuid.New(),
		ProfileID:     profile.ID,
		OperationType: types.OperationRestore,
		Status:        types.StatusRunning,
		StartedAt:     b.now().UTC(),
	}
	b.bus.Publish(profile.ID.String(), eventbus.RestoreStarted,
		fmt.Sprintf("restoring %d paths to %s", len(params.RemotePaths), params.LocalTarget))

	var log strings.Builder
	for _, remotePath := range params.RemotePaths {
		out, err := b.rcloneClient.Restore(ctx, profile, remotePath, params.LocalTarget)
		log.WriteString(out.Stdout)
		log.WriteString(out.Stderr)

		if err != nil || !out.Success {
			op.Status = types.StatusFailed
			op.ErrorMessage = transferError(remotePath, out, err)
			break
		}

		files, bytes := rclone.StatsFromOutput(out.Stdout + out.Stderr)
		op.FilesTransferred += files
		op.BytesTransferred += bytes
	}

	op.LogOutput = log.String()
	completed := b.now().UTC()
	op.CompletedAt = &completed
	if op.Status == types.StatusRunning {
		op.Status = types.StatusCompleted
	}

	if err := b.st.AppendOperations(ctx, op); err != nil {
		return nil, err
	}
	b.bus.Publish(profile.ID.String(), eventbus.RestoreDone,
		fmt.Sprintf("restore %s", op.Status))
	return op, nil
}

func (b *backupService) ListFiles(ctx context.Context, profileID uuid.UUID, subPath string, maxDepth int) ([]types.CloudFile, error) {
	profile, err := b.findProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return b.rcloneClient.ListFiles(ctx, profile, subPath, maxDepth)
}

func (b *backupService) History(ctx context.Context, profileID uuid.UUID) ([]*types.BackupOperation, error) {
	return b.st.OperationsForProfile(ctx, profileID)
}

func (b *backupService) ClearHistory(ctx context.Context) (int, error) {
	return b.st.ClearOperations(ctx)
}

func (b *backupService) findProfile(ctx context.Context, profileID uuid.UUID) (*types.Profile, error) {
	state, err := b.st.Load(ctx)
	if err != nil {
		return nil, err
	}
	profile := state.FindProfile(profileID)
	if profile == nil {
		return nil, store.ErrProfileNotFound
	}
	return profile, nil
}

func (b *backupService) markScheduleRun(ctx context.Context, profileID uuid.UUID, startedAt time.Time) error {
	return b.st.Update(ctx, func(state *types.AppState) error {
		profile := state.FindProfile(profileID)
		if profile == nil || profile.Schedule == nil {
			return nil
		}

		started := startedAt.UTC()
		profile.Schedule.LastRun = &started

		next, err := schedule.NextRun(*profile.Schedule, b.now())
		if err != nil && !errors.Is(err, schedule.ErrNoOccurrence) {
			return err
		}
		profile.Schedule.NextRun = next
		return nil
	})
}

func checkSources(sources []string) error {
	for _, source := range sources {
		if _, err := os.Stat(source); err != nil {
			return errors.Wrapf(err, "source %s is not readable", source)
		}
	}
	return nil
}

// checkRestoreTarget refuses to restore onto a nearly full volume.
func checkRestoreTarget(target string) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return errors.Wrapf(err, "cannot create restore target %s", target)
	}

	usage, err := disk.Usage(target)
	if err != nil {
		logger.Warn("could not read disk usage for restore target",
			zap.String("target", target), zap.Error(err))
		return nil
	}
	if usage.UsedPercent > 98 {
		return errors.Errorf("restore target %s is out of space (%.1f%% used)", target, usage.UsedPercent)
	}
	return nil
}

func transferError(path string, out rclone.Output, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", path, err)
	}
	msg := strings.TrimSpace(out.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("rclone exited with code %d", out.ExitCode)
	}
	return fmt.Sprintf("%s: %s", path, msg)
}
