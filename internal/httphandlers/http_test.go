package httphandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/manager"
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

func newServer(t *testing.T, accessKey string) *httptest.Server {
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
	require.NoError(t, err)
	t.Cleanup(func() { _ = sync.Stop() })

	mn := manager.New(cfg, profiles, backups, schedules, sync, rc, bus, "test")
	server := httptest.NewServer(Routes(NewApiHandler(mn)))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, accessKey string, body interface{}) (*http.Response, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if accessKey != "" {
		req.Header.Set(authorizationHeader, accessKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestHealthEndpointSkipsAuth(t *testing.T) {
	server := newServer(t, "secret")

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/v1/h", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRejectsBadKey(t *testing.T) {
	server := newServer(t, "secret")

	resp, envelope := doJSON(t, http.MethodGet, server.URL+"/v1/profiles", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, envelope.Error)
}

func TestProfileLifecycle(t *testing.T) {
	server := newServer(t, "secret")

	resp, envelope := doJSON(t, http.MethodPost, server.URL+"/v1/profiles", "secret", types.CreateProfileParams{
		Name:    "Documents",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/docs"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var profile types.Profile
	require.NoError(t, json.Unmarshal(raw, &profile))
	assert.Equal(t, "Documents", profile.Name)

	resp, envelope = doJSON(t, http.MethodGet, server.URL+"/v1/profiles/"+profile.ID.String(), "secret", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/v1/profiles/"+profile.ID.String(), "secret", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/v1/profiles/"+profile.ID.String(), "secret", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScheduleEndpoints(t *testing.T) {
	server := newServer(t, "")

	_, envelope := doJSON(t, http.MethodPost, server.URL+"/v1/profiles", "", types.CreateProfileParams{
		Name:    "Documents",
		Bucket:  "acme-backups",
		Sources: []string{"/tmp/docs"},
	})
	raw, _ := json.Marshal(envelope.Data)
	var profile types.Profile
	require.NoError(t, json.Unmarshal(raw, &profile))

	base := fmt.Sprintf("%s/v1/profiles/%s/schedule", server.URL, profile.ID)
	resp, envelope := doJSON(t, http.MethodPut, base, "", map[string]interface{}{
		"frequency": "weekly",
		"weekday":   3,
		"time":      "02:30",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, _ = json.Marshal(envelope.Data)
	var sched types.Schedule
	require.NoError(t, json.Unmarshal(raw, &sched))
	assert.True(t, sched.Enabled)
	assert.NotNil(t, sched.NextRun)

	resp, _ = doJSON(t, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, base, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScheduleUnknownProfileIs404(t *testing.T) {
	server := newServer(t, "")

	url := fmt.Sprintf("%s/v1/profiles/%s/schedule", server.URL, uuid.New())
	resp, _ := doJSON(t, http.MethodPut, url, "", map[string]interface{}{
		"frequency": "daily",
		"time":      "02:30",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidProfileID(t *testing.T) {
	server := newServer(t, "")

	resp, envelope := doJSON(t, http.MethodGet, server.URL+"/v1/profiles/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, envelope.Message, "invalid profile id")
}

func TestSyncLogsEndpoint(t *testing.T) {
	server := newServer(t, "")

	resp, envelope := doJSON(t, http.MethodPost, server.URL+"/v1/logs/sync", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "logs synced", envelope.Message)
}

func TestStatusEndpoint(t *testing.T) {
	server := newServer(t, "")

	resp, envelope := doJSON(t, http.MethodGet, server.URL+"/v1/status", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, _ := json.Marshal(envelope.Data)
	var status types.StatusResponse
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, "test", status.Version)
}
