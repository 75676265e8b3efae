package types

import (
	"time"

	"github.com/google/uuid"
)

type (
	OperationType   string
	OperationStatus string

	// BackupOperation is one recorded backup/restore/preview run. Once
	// CompletedAt is set the record is never mutated again.
	BackupOperation struct {
		ID               uuid.UUID       `json:"id"`
		ProfileID        uuid.UUID       `json:"profile_id"`
		OperationType    OperationType   `json:"operation_type"`
		Status           OperationStatus `json:"status"`
		StartedAt        time.Time       `json:"started_at"`
		CompletedAt      *time.Time      `json:"completed_at,omitempty"`
		FilesTransferred uint64          `json:"files_transferred"`
		BytesTransferred uint64          `json:"bytes_transferred"`
		ErrorMessage     string          `json:"error_message,omitempty"`
		LogOutput        string          `json:"log_output"`
	}
)

const (
	OperationBackup  OperationType = "backup"
	OperationRestore OperationType = "restore"
	OperationPreview OperationType = "preview"

	StatusRunning   OperationStatus = "running"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
	StatusCancelled OperationStatus = "cancelled"
)

func (t OperationType) String() string {
	return string(t)
}

func (s OperationStatus) String() string {
	return string(s)
}
