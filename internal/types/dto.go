package types

import (
	"github.com/google/uuid"
)

type (
	CreateProfileParams struct {
		Name    string   `json:"name" validate:"required"`
		Remote  string   `json:"remote"`
		Bucket  string   `json:"bucket" validate:"required"`
		Prefix  string   `json:"prefix"`
		Sources []string `json:"sources" validate:"required,min=1"`
		Mode    string   `json:"mode" validate:"omitempty,oneof=copy sync"`
	}

	UpdateProfileParams struct {
		ProfileID uuid.UUID `json:"profile_id" validate:"required"`
		Name      *string   `json:"name,omitempty"`
		Bucket    *string   `json:"bucket,omitempty"`
		Prefix    *string   `json:"prefix,omitempty"`
		Sources   []string  `json:"sources,omitempty"`
		Mode      *string   `json:"mode,omitempty" validate:"omitempty,oneof=copy sync"`
		Flags     []string  `json:"flags,omitempty"`
	}

	SetScheduleParams struct {
		ProfileID  uuid.UUID `json:"profile_id" validate:"required"`
		Frequency  string    `json:"frequency" validate:"required,oneof=daily weekly monthly"`
		Weekday    int       `json:"weekday" validate:"min=0,max=6"`
		DayOfMonth int       `json:"day_of_month" validate:"min=0,max=31"`
		Time       string    `json:"time" validate:"required"`
	}

	RestoreParams struct {
		ProfileID   uuid.UUID `json:"profile_id" validate:"required"`
		RemotePaths []string  `json:"remote_paths" validate:"required,min=1"`
		LocalTarget string    `json:"local_target" validate:"required"`
	}

	StatusResponse struct {
		Version       string  `json:"version"`
		Profiles      int     `json:"profiles"`
		DataDir       string  `json:"data_dir"`
		DiskTotal     uint64  `json:"disk_total"`
		DiskFree      uint64  `json:"disk_free"`
		DiskUsedPct   float64 `json:"disk_used_pct"`
		RcloneVersion string  `json:"rclone_version,omitempty"`
	}
)
