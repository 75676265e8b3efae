package rclone

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"nimbus/internal/types"
	"nimbus/logger"
)

type (
	// Output is the captured result of one rclone invocation.
	Output struct {
		Stdout   string
		Stderr   string
		ExitCode int
		Success  bool
	}

	// CommandRunner abstracts subprocess execution so services and tests
	// never touch os/exec directly. Run returns an error only when the
	// process could not be started; a non-zero exit lands in Output.
	CommandRunner interface {
		Run(ctx context.Context, bin string, args ...string) (Output, error)
	}

	Client interface {
		Detect(ctx context.Context) []string
		Version(ctx context.Context, bin string) (string, error)
		ValidateConfig(ctx context.Context, bin, confPath string) (bool, error)
		ListFiles(ctx context.Context, profile *types.Profile, subPath string, maxDepth int) ([]types.CloudFile, error)
		Transfer(ctx context.Context, profile *types.Profile, source string, dryRun bool) (Output, error)
		Restore(ctx context.Context, profile *types.Profile, remotePath, localTarget string) (Output, error)
	}

	client struct {
		runner CommandRunner
	}

	execRunner struct{}
)

// candidate locations checked when the profile has no explicit binary
var detectCandidates = []string{
	"/usr/local/bin/rclone",
	"/opt/homebrew/bin/rclone",
	"/usr/bin/rclone",
	"rclone",
}

func NewClient(runner CommandRunner) Client {
	if runner == nil {
		runner = execRunner{}
	}
	return &client{runner: runner}
}

func NewCommandRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, bin string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Success:  err == nil,
		ExitCode: 0,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		return out, errors.Wrapf(err, "failed to execute %s", bin)
	}
	return out, nil
}

func (c *client) Detect(ctx context.Context) []string {
	found := make([]string, 0)
	for _, candidate := range detectCandidates {
		out, err := c.runner.Run(ctx, candidate, "version")
		if err == nil && out.Success {
			found = append(found, candidate)
		}
	}
	return found
}

func (c *client) Version(ctx context.Context, bin string) (string, error) {
	out, err := c.runner.Run(ctx, bin, "version")
	if err != nil {
		return "", err
	}
	if !out.Success {
		return "", errors.Errorf("rclone version failed: %s", out.Stderr)
	}
	return firstLine(out.Stdout), nil
}

func (c *client) ValidateConfig(ctx context.Context, bin, confPath string) (bool, error) {
	if _, err := os.Stat(confPath); err != nil {
		return false, nil
	}
	out, err := c.runner.Run(ctx, bin, "config", "show", "--config", confPath)
	if err != nil {
		return false, err
	}
	return out.Success, nil
}

func (c *client) ListFiles(ctx context.Context, profile *types.Profile, subPath string, maxDepth int) ([]types.CloudFile, error) {
	target := profile.Destination()
	if subPath != "" {
		target = fmt.Sprintf("%s/%s", target, trimLeadingSlash(subPath))
	}

	args := []string{"lsjson", target, "--fast-list", "--config", profile.RcloneConf}
	if maxDepth > 0 {
		args = append(args, "--max-depth", fmt.Sprintf("%d", maxDepth))
	} else {
		args = append(args, "--recursive")
	}

	out, err := c.runner.Run(ctx, profile.RcloneBin, args...)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, errors.Errorf("rclone lsjson failed: %s", out.Stderr)
	}
	return parseListing(out.Stdout)
}

func (c *client) Transfer(ctx context.Context, profile *types.Profile, source string, dryRun bool) (Output, error) {
	args := []string{
		profile.Mode.String(),
		source,
		profile.Destination(),
		"--config", profile.RcloneConf,
		"--stats=1s",
		"--stats-one-line",
	}
	if dryRun {
		args = append(args, "--dry-run", "--stats=0")
	}
	args = append(args, profile.RcloneFlags...)

	logger.Info("invoking rclone",
		zap.String("operation", profile.Mode.String()),
		zap.String("source", source),
		zap.String("destination", profile.Destination()),
		zap.Bool("dry_run", dryRun))
	return c.runner.Run(ctx, profile.RcloneBin, args...)
}

func (c *client) Restore(ctx context.Context, profile *types.Profile, remotePath, localTarget string) (Output, error) {
	source := fmt.Sprintf("%s/%s", profile.Destination(), trimLeadingSlash(remotePath))
	args := []string{
		"copy",
		source,
		localTarget,
		"--config", profile.RcloneConf,
		"--stats=1s",
		"--stats-one-line",
		"--checksum",
		"--fast-list",
	}
	return c.runner.Run(ctx, profile.RcloneBin, args...)
}

// WriteConfig generates the S3 remote stanza rclone reads its credentials
// from. The file is rewritten whole, it only ever holds this one remote.
func WriteConfig(path, remoteName string, cred types.StorageCredentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "failed to create rclone config directory")
	}

	content := fmt.Sprintf(`[%s]
type = s3
provider = AWS
access_key_id = %s
secret_access_key = %s
region = %s
location_constraint = %s
acl = private

`, remoteName, cred.AccessKeyID, cred.SecretKey, cred.Region, cred.Region)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.Wrapf(err, "failed to write rclone config %s", path)
	}
	return nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

func trimLeadingSlash(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	return s
}
