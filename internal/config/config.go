package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	// Mode selects the logger profile, "production" or "development"
	Mode string

	// ListenAddr is the address the RPC surface binds to
	ListenAddr string

	// AccessKey guards the RPC surface. Empty disables the check (local-only setups)
	AccessKey string

	// DataDir holds the state document, generated scripts and per-profile logs
	DataDir string

	// SyncInterval is how often scheduled-backup logs are reconciled
	SyncInterval time.Duration
}

func New() Config {
	c := Config{
		Mode:         getenv("NIMBUS_MODE", "development"),
		ListenAddr:   getenv("NIMBUS_LISTEN_ADDR", "127.0.0.1:4666"),
		AccessKey:    os.Getenv("NIMBUS_ACCESS_KEY"),
		DataDir:      os.Getenv("NIMBUS_DATA_DIR"),
		SyncInterval: 5 * time.Minute,
	}

	if c.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		c.DataDir = filepath.Join(base, "nimbus")
	}

	if raw := os.Getenv("NIMBUS_SYNC_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			c.SyncInterval = d
		}
	}
	return c
}

// StateFile is the single JSON document holding all profiles and history.
func (c Config) StateFile() string {
	return filepath.Join(c.DataDir, "state.json")
}

func (c Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ProfileLogFile is the file the generated runner script appends to.
func (c Config) ProfileLogFile(profileID uuid.UUID) string {
	return filepath.Join(c.LogsDir(), fmt.Sprintf("backup-%s.log", profileID))
}

func (c Config) ScriptsDir() string {
	return filepath.Join(c.DataDir, "scripts")
}

func (c Config) RcloneConfFile() string {
	return filepath.Join(c.DataDir, "rclone.conf")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
