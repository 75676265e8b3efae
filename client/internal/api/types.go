package api

import (
	"time"

	"github.com/google/uuid"
)

type (
	Profile struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Remote    string    `json:"remote"`
		Bucket    string    `json:"bucket"`
		Prefix    string    `json:"prefix"`
		Sources   []string  `json:"sources"`
		Mode      string    `json:"mode"`
		Schedule  *Schedule `json:"schedule,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	Schedule struct {
		Enabled   bool       `json:"enabled"`
		Frequency Frequency  `json:"frequency"`
		Time      string     `json:"time"`
		LastRun   *time.Time `json:"last_run,omitempty"`
		NextRun   *time.Time `json:"next_run,omitempty"`
	}

	Frequency struct {
		Kind       string `json:"kind"`
		Weekday    int    `json:"weekday,omitempty"`
		DayOfMonth int    `json:"day_of_month,omitempty"`
	}

	Operation struct {
		ID               uuid.UUID  `json:"id"`
		ProfileID        uuid.UUID  `json:"profile_id"`
		OperationType    string     `json:"operation_type"`
		Status           string     `json:"status"`
		StartedAt        time.Time  `json:"started_at"`
		CompletedAt      *time.Time `json:"completed_at,omitempty"`
		FilesTransferred uint64     `json:"files_transferred"`
		BytesTransferred uint64     `json:"bytes_transferred"`
		ErrorMessage     string     `json:"error_message,omitempty"`
	}

	FileChange struct {
		Path   string `json:"path"`
		Size   int64  `json:"size"`
		Action string `json:"action"`
	}

	Preview struct {
		FilesToCopy   []FileChange `json:"files_to_copy"`
		FilesToUpdate []FileChange `json:"files_to_update"`
		FilesToDelete []FileChange `json:"files_to_delete"`
		TotalFiles    uint64       `json:"total_files"`
		TotalSize     uint64       `json:"total_size"`
	}

	CloudFile struct {
		Path    string    `json:"path"`
		Name    string    `json:"name"`
		Size    int64     `json:"size"`
		ModTime time.Time `json:"mod_time"`
		IsDir   bool      `json:"is_dir"`
	}

	Status struct {
		Version       string  `json:"version"`
		Profiles      int     `json:"profiles"`
		DataDir       string  `json:"data_dir"`
		DiskTotal     uint64  `json:"disk_total"`
		DiskFree      uint64  `json:"disk_free"`
		DiskUsedPct   float64 `json:"disk_used_pct"`
		RcloneVersion string  `json:"rclone_version,omitempty"`
	}

	Event struct {
		ProfileID string    `json:"profile_id"`
		Kind      string    `json:"kind"`
		Message   string    `json:"message"`
		At        time.Time `json:"at"`
	}

	CreateProfileParams struct {
		Name    string   `json:"name"`
		Remote  string   `json:"remote,omitempty"`
		Bucket  string   `json:"bucket"`
		Prefix  string   `json:"prefix,omitempty"`
		Sources []string `json:"sources"`
		Mode    string   `json:"mode,omitempty"`
	}

	SetScheduleParams struct {
		Frequency  string `json:"frequency"`
		Weekday    int    `json:"weekday,omitempty"`
		DayOfMonth int    `json:"day_of_month,omitempty"`
		Time       string `json:"time"`
	}

	RestoreParams struct {
		RemotePaths []string `json:"remote_paths"`
		LocalTarget string   `json:"local_target"`
	}

	ConfigureStorageParams struct {
		AccessKeyID string `json:"access_key_id"`
		SecretKey   string `json:"secret_key"`
		Region      string `json:"region"`
		Endpoint    string `json:"endpoint,omitempty"`
		Bucket      string `json:"bucket"`
	}
)
