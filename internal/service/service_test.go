package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/schedule"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger("development")
	os.Exit(m.Run())
}

type fakeRclone struct {
	detected    []string
	transfers   []string
	restores    []string
	output      rclone.Output
	outputs     map[string]rclone.Output
	transferErr error
	listing     []types.CloudFile
}

func (f *fakeRclone) Detect(context.Context) []string { return f.detected }

func (f *fakeRclone) Version(context.Context, string) (string, error) {
	return "rclone v1.68.0", nil
}

func (f *fakeRclone) ValidateConfig(context.Context, string, string) (bool, error) {
	return true, nil
}

func (f *fakeRclone) ListFiles(context.Context, *types.Profile, string, int) ([]types.CloudFile, error) {
	return f.listing, nil
}

func (f *fakeRclone) Transfer(_ context.Context, _ *types.Profile, source string, _ bool) (rclone.Output, error) {
	f.transfers = append(f.transfers, source)
	if out, ok := f.outputs[source]; ok {
		return out, f.transferErr
	}
	return f.output, f.transferErr
}

func (f *fakeRclone) Restore(_ context.Context, _ *types.Profile, remotePath, _ string) (rclone.Output, error) {
	f.restores = append(f.restores, remotePath)
	return f.output, nil
}

type fakeAdapter struct {
	registered   []uuid.UUID
	unregistered []uuid.UUID
	scripts      []string
}

func (f *fakeAdapter) Register(_ context.Context, profile *types.Profile, _ schedule.TriggerSpec, scriptPath string) error {
	f.registered = append(f.registered, profile.ID)
	f.scripts = append(f.scripts, scriptPath)
	return nil
}

func (f *fakeAdapter) Unregister(_ context.Context, profileID uuid.UUID) error {
	f.unregistered = append(f.unregistered, profileID)
	return nil
}

func newTestStore(t *testing.T) (store.Store, config.Config) {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	return store.NewJSONStore(cfg.StateFile(), "test"), cfg
}

func createParams(name string, sources ...string) types.CreateProfileParams {
	return types.CreateProfileParams{
		Name:    name,
		Bucket:  "acme-backups",
		Sources: sources,
	}
}

func createProfile(t *testing.T, svc ProfileService, sources ...string) *types.Profile {
	t.Helper()
	profile, err := svc.Create(context.Background(), createParams("Documents", sources...))
	require.NoError(t, err)
	return profile
}

func TestProfileCreateAndList(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewProfileService(st, cfg, &fakeRclone{detected: []string{"/usr/bin/rclone"}}, eventbus.New())

	profile := createProfile(t, svc, "/tmp/docs")
	assert.Equal(t, "/usr/bin/rclone", profile.RcloneBin)
	assert.Equal(t, cfg.RcloneConfFile(), profile.RcloneConf)
	assert.Equal(t, types.BackupModeCopy, profile.Mode)

	all, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, all, 1)

	// the first profile becomes active
	state, err := st.Load(context.Background())
	assert.NoError(t, err)
	require.NotNil(t, state.ActiveProfileID)
	assert.Equal(t, profile.ID, *state.ActiveProfileID)
}

func TestProfileCreateRejectsDuplicateName(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())

	createProfile(t, svc, "/tmp/docs")
	_, err := svc.Create(context.Background(), types.CreateProfileParams{
		Name:    "Documents",
		Bucket:  "other",
		Sources: []string{"/tmp/other"},
	})
	assert.ErrorContains(t, err, "already exists")
}

func TestProfileUpdate(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, svc, "/tmp/docs")

	newName := "Photos"
	newMode := "sync"
	updated, err := svc.Update(context.Background(), types.UpdateProfileParams{
		ProfileID: profile.ID,
		Name:      &newName,
		Mode:      &newMode,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Photos", updated.Name)
	assert.Equal(t, types.BackupModeSync, updated.Mode)

	reloaded, err := svc.Get(context.Background(), profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Photos", reloaded.Name)
}

func TestProfileDeleteReassignsActive(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())

	first := createProfile(t, svc, "/tmp/docs")
	second, err := svc.Create(context.Background(), types.CreateProfileParams{
		Name:    "Photos",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/photos"},
	})
	require.NoError(t, err)

	assert.NoError(t, svc.Delete(context.Background(), first.ID))

	state, err := st.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, state.Profiles, 1)
	require.NotNil(t, state.ActiveProfileID)
	assert.Equal(t, second.ID, *state.ActiveProfileID)
}

func TestProfileGetUnknown(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestBackupRunRecordsOperation(t *testing.T) {
	st, cfg := newTestStore(t)
	source := t.TempDir()
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, source)

	rc := &fakeRclone{output: rclone.Output{
		Stdout:  "Transferred: 1.250 GiB / 1.250 GiB, 100%\nTransferred: 57 / 57, 100%\n",
		Success: true,
	}}
	bus := eventbus.New()
	events, cancel := bus.Subscribe(profile.ID.String())
	defer cancel()

	svc := NewBackupService(st, rc, bus)
	op, err := svc.Run(context.Background(), profile.ID)
	assert.NoError(t, err)

	assert.Equal(t, types.StatusCompleted, op.Status)
	assert.Equal(t, uint64(57), op.FilesTransferred)
	assert.Equal(t, uint64(1_342_177_280), op.BytesTransferred)
	assert.NotNil(t, op.CompletedAt)
	assert.Equal(t, []string{source}, rc.transfers)

	history, err := svc.History(context.Background(), profile.ID)
	assert.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, op.ID, history[0].ID)

	first := <-events
	assert.Equal(t, eventbus.BackupStarted, first.Kind)
}

func TestBackupRunFailureKeepsRecord(t *testing.T) {
	st, cfg := newTestStore(t)
	source := t.TempDir()
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, source)

	rc := &fakeRclone{output: rclone.Output{
		Stderr:   "Failed to copy: AccessDenied",
		ExitCode: 1,
		Success:  false,
	}}
	svc := NewBackupService(st, rc, eventbus.New())

	op, err := svc.Run(context.Background(), profile.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.StatusFailed, op.Status)
	assert.Contains(t, op.ErrorMessage, "AccessDenied")

	history, err := svc.History(context.Background(), profile.ID)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestBackupRunRejectsMissingSource(t *testing.T) {
	st, cfg := newTestStore(t)
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, filepath.Join(t.TempDir(), "does-not-exist"))

	svc := NewBackupService(st, &fakeRclone{}, eventbus.New())
	_, err := svc.Run(context.Background(), profile.ID)
	assert.ErrorContains(t, err, "not readable")
}

func TestBackupRunUpdatesSchedule(t *testing.T) {
	st, cfg := newTestStore(t)
	source := t.TempDir()
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, source)

	schedules := NewScheduleService(st, cfg, &fakeAdapter{}, eventbus.New())
	_, err := schedules.Set(context.Background(), types.SetScheduleParams{
		ProfileID: profile.ID,
		Frequency: "daily",
		Time:      "03:30",
	})
	require.NoError(t, err)

	rc := &fakeRclone{output: rclone.Output{Stdout: "Transferred: 1 / 1, 100%\n", Success: true}}
	svc := NewBackupService(st, rc, eventbus.New())
	op, err := svc.Run(context.Background(), profile.ID)
	require.NoError(t, err)

	sched, err := schedules.Status(context.Background(), profile.ID)
	assert.NoError(t, err)
	require.NotNil(t, sched)
	require.NotNil(t, sched.LastRun)
	assert.True(t, sched.LastRun.Equal(op.StartedAt))
	require.NotNil(t, sched.NextRun)
	assert.True(t, sched.NextRun.After(time.Now().UTC()))
}

func TestPreviewCategorizesChanges(t *testing.T) {
	st, cfg := newTestStore(t)
	source := t.TempDir()
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, source)

	rc := &fakeRclone{output: rclone.Output{
		Stderr: "2025/08/20 00:22:05 NOTICE: report.pdf: Skipped copy as --dry-run is set (size 1.5Mi)\n" +
			"2025/08/20 00:22:05 NOTICE: notes.txt: Skipped update as --dry-run is set (size 512B)\n" +
			"2025/08/20 00:22:06 NOTICE: old.bak: Skipped delete as --dry-run is set\n",
		Success: true,
	}}
	svc := NewBackupService(st, rc, eventbus.New())

	preview, err := svc.Preview(context.Background(), profile.ID)
	assert.NoError(t, err)
	assert.Len(t, preview.FilesToCopy, 1)
	assert.Len(t, preview.FilesToUpdate, 1)
	assert.Len(t, preview.FilesToDelete, 1)
	assert.Equal(t, uint64(2), preview.TotalFiles)
	assert.Equal(t, uint64(1_572_864+512), preview.TotalSize)
}

func TestRestoreRunsEveryPath(t *testing.T) {
	st, cfg := newTestStore(t)
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, t.TempDir())

	rc := &fakeRclone{output: rclone.Output{Stdout: "Transferred: 3 / 3, 100%\n", Success: true}}
	svc := NewBackupService(st, rc, eventbus.New())

	op, err := svc.Restore(context.Background(), types.RestoreParams{
		ProfileID:   profile.ID,
		RemotePaths: []string{"docs/a.txt", "docs/b.txt"},
		LocalTarget: filepath.Join(t.TempDir(), "restored"),
	})
	assert.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, op.Status)
	assert.Equal(t, types.OperationRestore, op.OperationType)
	assert.Equal(t, []string{"docs/a.txt", "docs/b.txt"}, rc.restores)
	assert.Equal(t, uint64(6), op.FilesTransferred)
}

func TestScheduleSetRegistersWithAdapter(t *testing.T) {
	st, cfg := newTestStore(t)
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, "/tmp/docs")

	adapter := &fakeAdapter{}
	svc := NewScheduleService(st, cfg, adapter, eventbus.New())

	sched, err := svc.Set(context.Background(), types.SetScheduleParams{
		ProfileID: profile.ID,
		Frequency: "weekly",
		Weekday:   3,
		Time:      "02:30",
	})
	assert.NoError(t, err)
	assert.True(t, sched.Enabled)
	require.NotNil(t, sched.NextRun)

	require.Len(t, adapter.registered, 1)
	assert.Equal(t, profile.ID, adapter.registered[0])
	assert.FileExists(t, adapter.scripts[0])
}

func TestScheduleSetInvalidFrequency(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewScheduleService(st, cfg, &fakeAdapter{}, eventbus.New())

	_, err := svc.Set(context.Background(), types.SetScheduleParams{
		ProfileID: uuid.New(),
		Frequency: "hourly",
		Time:      "02:30",
	})
	assert.ErrorContains(t, err, "unknown frequency")
}

func TestScheduleSetInvalidTime(t *testing.T) {
	st, cfg := newTestStore(t)
	svc := NewScheduleService(st, cfg, &fakeAdapter{}, eventbus.New())

	_, err := svc.Set(context.Background(), types.SetScheduleParams{
		ProfileID: uuid.New(),
		Frequency: "daily",
		Time:      "25:00",
	})
	assert.Error(t, err)
}

func TestScheduleRemove(t *testing.T) {
	st, cfg := newTestStore(t)
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	profile := createProfile(t, profiles, "/tmp/docs")

	adapter := &fakeAdapter{}
	svc := NewScheduleService(st, cfg, adapter, eventbus.New())

	_, err := svc.Set(context.Background(), types.SetScheduleParams{
		ProfileID: profile.ID,
		Frequency: "daily",
		Time:      "02:30",
	})
	require.NoError(t, err)

	assert.NoError(t, svc.Remove(context.Background(), profile.ID))
	assert.Equal(t, []uuid.UUID{profile.ID}, adapter.unregistered)

	sched, err := svc.Status(context.Background(), profile.ID)
	assert.NoError(t, err)
	assert.Nil(t, sched)
}

func TestScheduleRestoreRegistrations(t *testing.T) {
	st, cfg := newTestStore(t)
	profiles := NewProfileService(st, cfg, &fakeRclone{}, eventbus.New())
	withSchedule := createProfile(t, profiles, "/tmp/docs")
	_, err := profiles.Create(context.Background(), types.CreateProfileParams{
		Name:    "NoSchedule",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/other"},
	})
	require.NoError(t, err)

	adapter := &fakeAdapter{}
	svc := NewScheduleService(st, cfg, adapter, eventbus.New())
	_, err = svc.Set(context.Background(), types.SetScheduleParams{
		ProfileID: withSchedule.ID,
		Frequency: "daily",
		Time:      "02:30",
	})
	require.NoError(t, err)

	fresh := &fakeAdapter{}
	boot := NewScheduleService(st, cfg, fresh, eventbus.New())
	assert.NoError(t, boot.RestoreRegistrations(context.Background()))
	assert.Equal(t, []uuid.UUID{withSchedule.ID}, fresh.registered)
}
