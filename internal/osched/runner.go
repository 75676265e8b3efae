package osched

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

type execRunner struct{}

func NewCommandRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, bin string, args ...string) (int, string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), stderr.String(), nil
	}
	if err != nil {
		return -1, stderr.String(), errors.Wrapf(err, "failed to execute %s", bin)
	}
	return 0, stderr.String(), nil
}
