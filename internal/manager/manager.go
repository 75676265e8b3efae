package manager

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	errorpkg "github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/service"
	"nimbus/internal/types"
	"nimbus/logger"
)

type (
	// Manager is the single entry point the RPC surface talks to. It
	// validates parameters and delegates to the services.
	Manager interface {
		ValidateAccessKey(key string) error

		CreateProfile(ctx context.Context, params types.CreateProfileParams) (*types.Profile, error)
		UpdateProfile(ctx context.Context, params types.UpdateProfileParams) (*types.Profile, error)
		DeleteProfile(ctx context.Context, profileID uuid.UUID) error
		GetProfile(ctx context.Context, profileID uuid.UUID) (*types.Profile, error)
		ListProfiles(ctx context.Context) ([]*types.Profile, error)
		ActivateProfile(ctx context.Context, profileID uuid.UUID) error
		ConfigureStorage(ctx context.Context, cred types.StorageCredentials, bucket string) error

		RunBackup(ctx context.Context, profileID uuid.UUID) (*types.BackupOperation, error)
		PreviewBackup(ctx context.Context, profileID uuid.UUID) (*types.BackupPreview, error)
		Restore(ctx context.Context, params types.RestoreParams) (*types.BackupOperation, error)
		ListFiles(ctx context.Context, profileID uuid.UUID, subPath string, maxDepth int) ([]types.CloudFile, error)
		History(ctx context.Context, profileID uuid.UUID) ([]*types.BackupOperation, error)
		ClearHistory(ctx context.Context) (int, error)

		SetSchedule(ctx context.Context, params types.SetScheduleParams) (*types.Schedule, error)
		RemoveSchedule(ctx context.Context, profileID uuid.UUID) error
		ScheduleStatus(ctx context.Context, profileID uuid.UUID) (*types.Schedule, error)

		SyncLogs(ctx context.Context) (int, error)
		Subscribe(profileID string) (chan eventbus.Event, func())
		Status(ctx context.Context) (*types.StatusResponse, error)
	}

	manager struct {
		cfg             config.Config
		profileService  service.ProfileService
		backupService   service.BackupService
		scheduleService service.ScheduleService
		syncService     service.SyncService
		rcloneClient    rclone.Client
		bus             eventbus.Bus
		validate        *validator.Validate
		version         string
	}
)

func New(
	cfg config.Config,
	profiles service.ProfileService,
	backups service.BackupService,
	schedules service.ScheduleService,
	sync service.SyncService,
	rc rclone.Client,
	bus eventbus.Bus,
	version string) Manager {
	return &manager{
		cfg:             cfg,
		profileService:  profiles,
		backupService:   backups,
		scheduleService: schedules,
		syncService:     sync,
		rcloneClient:    rc,
		bus:             bus,
		validate:        validator.New(),
		version:         version,
	}
}

func (m *manager) ValidateAccessKey(key string) error {
	if m.cfg.AccessKey == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(m.cfg.AccessKey)) != 1 {
		return errors.New("access denied")
	}
	return nil
}

func (m *manager) CreateProfile(ctx context.Context, params types.CreateProfileParams) (*types.Profile, error) {
	if err := m.validate.Struct(params); err != nil {
		return nil, errorpkg.Wrap(err, "invalid profile parameters")
	}
	return m.profileService.Create(ctx, params)
}

func (m *manager) UpdateProfile(ctx context.Context, params types.UpdateProfileParams) (*types.Profile, error) {
	if err := m.validate.Struct(params); err != nil {
		return nil, errorpkg.Wrap(err, "invalid profile parameters")
	}
	return m.profileService.Update(ctx, params)
}

func (m *manager) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	if err := m.scheduleService.Remove(ctx, profileID); err != nil {
		logger.Warn("could not remove schedule during profile delete",
			zap.String("profile_id", profileID.String()), zap.Error(err))
	}
	return m.profileService.Delete(ctx, profileID)
}

func (m *manager) GetProfile(ctx context.Context, profileID uuid.UUID) (*types.Profile, error) {
	return m.profileService.Get(ctx, profileID)
}

func (m *manager) ListProfiles(ctx context.Context) ([]*types.Profile, error) {
	return m.profileService.List(ctx)
}

func (m *manager) ActivateProfile(ctx context.Context, profileID uuid.UUID) error {
	return m.profileService.SetActive(ctx, profileID)
}

func (m *manager) ConfigureStorage(ctx context.Context, cred types.StorageCredentials, bucket string) error {
	if cred.AccessKeyID == "" || cred.SecretKey == "" {
		return errors.New("access key id and secret key are required")
	}
	if bucket == "" {
		return errors.New("bucket is required")
	}
	return m.profileService.ConfigureStorage(ctx, cred, bucket)
}

func (m *manager) RunBackup(ctx context.Context, profileID uuid.UUID) (*types.BackupOperation, error) {
	return m.backupService.Run(ctx, profileID)
}

func (m *manager) PreviewBackup(ctx context.Context, profileID uuid.UUID) (*types.BackupPreview, error) {
	return m.backupService.Preview(ctx, profileID)
}

func (m *manager) Restore(ctx context.Context, params types.RestoreParams) (*types.BackupOperation, error) {
	if err := m.validate.Struct(params); err != nil {
		return nil, errorpkg.Wrap(err, "invalid restore parameters")
	}
	return m.backupService.Restore(ctx, params)
}

func (m *manager) ListFiles(ctx context.Context, profileID uuid.UUID, subPath string, maxDepth int) ([]types.CloudFile, error) {
	return m.backupService.ListFiles(ctx, profileID, subPath, maxDepth)
}

func (m *manager) History(ctx context.Context, profileID uuid.UUID) ([]*types.BackupOperation, error) {
	return m.backupService.History(ctx, profileID)
}

func (m *manager) ClearHistory(ctx context.Context) (int, error) {
	return m.backupService.ClearHistory(ctx)
}

func (m *manager) SetSchedule(ctx context.Context, params types.SetScheduleParams) (*types.Schedule, error) {
	if err := m.validate.Struct(params); err != nil {
		return nil, errorpkg.Wrap(err, "invalid schedule parameters")
	}
	return m.scheduleService.Set(ctx, params)
}

func (m *manager) RemoveSchedule(ctx context.Context, profileID uuid.UUID) error {
	return m.scheduleService.Remove(ctx, profileID)
}

func (m *manager) ScheduleStatus(ctx context.Context, profileID uuid.UUID) (*types.Schedule, error) {
	return m.scheduleService.Status(ctx, profileID)
}

func (m *manager) SyncLogs(ctx context.Context) (int, error) {
	return m.syncService.SyncAll(ctx)
}

func (m *manager) Subscribe(profileID string) (chan eventbus.Event, func()) {
	return m.bus.Subscribe(profileID)
}

func (m *manager) Status(ctx context.Context) (*types.StatusResponse, error) {
	profiles, err := m.profileService.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &types.StatusResponse{
		Version:  m.version,
		Profiles: len(profiles),
		DataDir:  m.cfg.DataDir,
	}

	if usage, err := disk.Usage(m.cfg.DataDir); err == nil {
		resp.DiskTotal = usage.Total
		resp.DiskFree = usage.Free
		resp.DiskUsedPct = usage.UsedPercent
	}

	versionCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if candidates := m.rcloneClient.Detect(versionCtx); len(candidates) > 0 {
		if v, err := m.rcloneClient.Version(versionCtx, candidates[0]); err == nil {
			resp.RcloneVersion = v
		}
	}
	return resp, nil
}
