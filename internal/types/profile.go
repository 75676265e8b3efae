package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	BackupMode string

	Profile struct {
		ID          uuid.UUID  `json:"id"`
		Name        string     `json:"name"`
		Remote      string     `json:"remote"`
		Bucket      string     `json:"bucket"`
		Prefix      string     `json:"prefix"`
		Sources     []string   `json:"sources"`
		Mode        BackupMode `json:"mode"`
		RcloneBin   string     `json:"rclone_bin"`
		RcloneConf  string     `json:"rclone_conf"`
		RcloneFlags []string   `json:"rclone_flags"`
		Schedule    *Schedule  `json:"schedule,omitempty"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}
)

const (
	BackupModeCopy BackupMode = "copy"
	BackupModeSync BackupMode = "sync"
)

func (m BackupMode) String() string {
	return string(m)
}

// DefaultRcloneFlags are applied to every new profile, matching the
// transfer tuning the app ships with.
var DefaultRcloneFlags = []string{
	"--checksum",
	"--fast-list",
	"--transfers=8",
	"--checkers=32",
}

func NewProfile(name string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:          uuid.New(),
		Name:        name,
		Remote:      "aws",
		Mode:        BackupModeCopy,
		RcloneFlags: append([]string{}, DefaultRcloneFlags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Destination returns the rclone target, remote:bucket or remote:bucket/prefix.
func (p *Profile) Destination() string {
	if p.Prefix == "" {
		return fmt.Sprintf("%s:%s", p.Remote, p.Bucket)
	}
	return fmt.Sprintf("%s:%s/%s", p.Remote, p.Bucket, p.Prefix)
}
