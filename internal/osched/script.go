package osched

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"nimbus/internal/types"
)

// WriteRunnerScript generates the bash script the OS scheduler executes.
// Its echo lines are the exact grammar the log reconciler parses, changing
// one side means changing the other.
func WriteRunnerScript(profile *types.Profile, scriptsDir, logFile string) (string, error) {
	if err := os.MkdirAll(scriptsDir, 0700); err != nil {
		return "", errors.Wrap(err, "failed to create scripts directory")
	}

	scriptPath := filepath.Join(scriptsDir, fmt.Sprintf("backup-%s.sh", profile.ID))

	var commands strings.Builder
	for _, source := range profile.Sources {
		commands.WriteString(fmt.Sprintf(`echo "$(date): Backing up %s" >> "$LOG_FILE"
"$RCLONE_BIN" %s %q "$DESTINATION" --config "$RCLONE_CONFIG" %s --log-file "$LOG_FILE" --log-level INFO

`, source, profile.Mode, source, strings.Join(profile.RcloneFlags, " ")))
	}

	content := fmt.Sprintf(`#!/bin/bash
set -euo pipefail

# nimbus scheduled backup runner
# Profile: %s
# Generated: %s

RCLONE_BIN=%q
RCLONE_CONFIG=%q
DESTINATION=%q

LOG_FILE=%q
mkdir -p "$(dirname "$LOG_FILE")"

echo "$(date): Starting scheduled backup for profile %s" >> "$LOG_FILE"

%s
echo "$(date): Backup completed for profile %s" >> "$LOG_FILE"
`,
		profile.Name,
		time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		profile.RcloneBin,
		profile.RcloneConf,
		profile.Destination(),
		logFile,
		profile.Name,
		commands.String(),
		profile.Name,
	)

	if err := os.WriteFile(scriptPath, []byte(content), 0755); err != nil {
		return "", errors.Wrapf(err, "failed to write runner script %s", scriptPath)
	}
	return scriptPath, nil
}

// RemoveRunnerScript deletes a profile's generated script if present.
func RemoveRunnerScript(profileID string, scriptsDir string) error {
	scriptPath := filepath.Join(scriptsDir, fmt.Sprintf("backup-%s.sh", profileID))
	if err := os.Remove(scriptPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove runner script %s", scriptPath)
	}
	return nil
}
