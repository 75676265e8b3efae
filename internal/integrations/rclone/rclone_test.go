package rclone

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nimbus/internal/types"
	"nimbus/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeRunner struct {
	calls   [][]string
	outputs map[string]Output
}

func (f *fakeRunner) Run(ctx context.Context, bin string, args ...string) (Output, error) {
	f.calls = append(f.calls, append([]string{bin}, args...))
	if out, ok := f.outputs[bin+" "+strings.Join(args, " ")]; ok {
		return out, nil
	}
	if out, ok := f.outputs[args[0]]; ok {
		return out, nil
	}
	return Output{Success: false, ExitCode: 1, Stderr: "unknown command"}, nil
}

func testProfile() *types.Profile {
	p := types.NewProfile("documents")
	p.Bucket = "acme-backups"
	p.Prefix = "users/u1"
	p.RcloneBin = "/usr/bin/rclone"
	p.RcloneConf = "/tmp/rclone.conf"
	p.Sources = []string{"/home/user/Documents"}
	return p
}

func TestClient_Version(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]Output{
		"version": {Success: true, Stdout: "rclone v1.68.2\n- os/version: darwin 14.5\n"},
	}}
	c := NewClient(runner)

	version, err := c.Version(context.Background(), "/usr/bin/rclone")
	require.NoError(t, err)
	assert.Equal(t, "rclone v1.68.2", version)
}

func TestClient_TransferArgs(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]Output{
		"copy": {Success: true},
	}}
	c := NewClient(runner)
	profile := testProfile()

	out, err := c.Transfer(context.Background(), profile, "/home/user/Documents", false)
	require.NoError(t, err)
	assert.True(t, out.Success)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "/usr/bin/rclone", call[0])
	assert.Equal(t, "copy", call[1])
	assert.Equal(t, "/home/user/Documents", call[2])
	assert.Equal(t, "aws:acme-backups/users/u1", call[3])
	assert.Contains(t, call, "--checksum")
	assert.NotContains(t, call, "--dry-run")
}

func TestClient_TransferDryRun(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]Output{
		"sync": {Success: true},
	}}
	c := NewClient(runner)
	profile := testProfile()
	profile.Mode = types.BackupModeSync

	_, err := c.Transfer(context.Background(), profile, "/home/user/Documents", true)
	require.NoError(t, err)
	assert.Contains(t, runner.calls[0], "--dry-run")
}

func TestClient_RestoreTrimsLeadingSlash(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]Output{
		"copy": {Success: true},
	}}
	c := NewClient(runner)

	_, err := c.Restore(context.Background(), testProfile(), "/docs/report.pdf", "/tmp/restore")
	require.NoError(t, err)
	assert.Equal(t, "aws:acme-backups/users/u1/docs/report.pdf", runner.calls[0][2])
}

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "rclone.conf")

	err := WriteConfig(path, "aws", types.StorageCredentials{
		AccessKeyID: "AKIA123",
		SecretKey:   "secret",
		Region:      "eu-central-1",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[aws]")
	assert.Contains(t, string(content), "access_key_id = AKIA123")
	assert.Contains(t, string(content), "region = eu-central-1")
}
