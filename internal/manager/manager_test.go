package manager

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/osched"
	"nimbus/internal/reconcile"
	"nimbus/internal/service"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger("development")
	os.Exit(m.Run())
}

type noopRunner struct{}

func (noopRunner) Run(context.Context, string, ...string) (rclone.Output, error) {
	return rclone.Output{Success: true}, nil
}

type noopOsRunner struct{}

func (noopOsRunner) Run(context.Context, string, ...string) (int, string, error) {
	return 0, "", nil
}

func newManager(t *testing.T, accessKey string) Manager {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.AccessKey = accessKey

	st := store.NewJSONStore(cfg.StateFile(), "test")
	bus := eventbus.New()
	rc := rclone.NewClient(noopRunner{})
	adapter := osched.NewCronFallback(noopOsRunner{})

	profiles := service.NewProfileService(st, cfg, rc, bus)
	backups := service.NewBackupService(st, rc, bus)
	schedules := service.NewScheduleService(st, cfg, adapter, bus)
	sync, err := service.NewSyncService(st, reconcile.NewReconciler(st, cfg), bus, cfg.SyncInterval)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sync.Stop() })

	return New(cfg, profiles, backups, schedules, sync, rc, bus, "test")
}

func TestValidateAccessKey(t *testing.T) {
	m := newManager(t, "secret")
	assert.NoError(t, m.ValidateAccessKey("secret"))
	assert.Error(t, m.ValidateAccessKey("wrong"))
	assert.Error(t, m.ValidateAccessKey(""))

	// no configured key disables the check
	open := newManager(t, "")
	assert.NoError(t, open.ValidateAccessKey("anything"))
}

func TestCreateProfileValidation(t *testing.T) {
	m := newManager(t, "")

	_, err := m.CreateProfile(context.Background(), types.CreateProfileParams{
		Name:   "Documents",
		Bucket: "acme-backups",
	})
	assert.ErrorContains(t, err, "invalid profile parameters")

	_, err = m.CreateProfile(context.Background(), types.CreateProfileParams{
		Name:    "Documents",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/docs"},
		Mode:    "move",
	})
	assert.ErrorContains(t, err, "invalid profile parameters")

	profile, err := m.CreateProfile(context.Background(), types.CreateProfileParams{
		Name:    "Documents",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/docs"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, profile)
}

func TestSetScheduleValidation(t *testing.T) {
	m := newManager(t, "")

	_, err := m.SetSchedule(context.Background(), types.SetScheduleParams{
		ProfileID: uuid.New(),
		Frequency: "hourly",
		Time:      "02:30",
	})
	assert.ErrorContains(t, err, "invalid schedule parameters")
}

func TestConfigureStorageRequiresCredentials(t *testing.T) {
	m := newManager(t, "")

	err := m.ConfigureStorage(context.Background(), types.StorageCredentials{}, "acme-backups")
	assert.ErrorContains(t, err, "access key id and secret key are required")

	err = m.ConfigureStorage(context.Background(), types.StorageCredentials{
		AccessKeyID: "AKIA...",
		SecretKey:   "secret",
	}, "")
	assert.ErrorContains(t, err, "bucket is required")
}

func TestStatus(t *testing.T) {
	m := newManager(t, "")

	_, err := m.CreateProfile(context.Background(), types.CreateProfileParams{
		Name:    "Documents",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/docs"},
	})
	assert.NoError(t, err)

	status, err := m.Status(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, 1, status.Profiles)
	assert.NotZero(t, status.DiskTotal)
}
