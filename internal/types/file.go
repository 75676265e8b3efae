package types

import (
	"time"
)

type (
	// CloudFile is one entry of an `rclone lsjson` listing.
	CloudFile struct {
		Path     string    `json:"path"`
		Name     string    `json:"name"`
		Size     int64     `json:"size"`
		ModTime  time.Time `json:"mod_time"`
		IsDir    bool      `json:"is_dir"`
		MimeType string    `json:"mime_type,omitempty"`
	}

	ChangeAction string

	FileChange struct {
		Path   string       `json:"path"`
		Size   int64        `json:"size"`
		Action ChangeAction `json:"action"`
	}

	BackupPreview struct {
		FilesToCopy   []FileChange `json:"files_to_copy"`
		FilesToUpdate []FileChange `json:"files_to_update"`
		FilesToDelete []FileChange `json:"files_to_delete"`
		TotalFiles    uint64       `json:"total_files"`
		TotalSize     uint64       `json:"total_size"`
	}
)

const (
	ActionCopy   ChangeAction = "copy"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)
