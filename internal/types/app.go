package types

import (
	"time"

	"github.com/google/uuid"
)

type (
	// AppState is the whole persisted application state: every profile,
	// the pointer to the active one and the bounded operation history.
	// It is stored as a single JSON document, saved atomically.
	AppState struct {
		Profiles         []*Profile         `json:"profiles"`
		ActiveProfileID  *uuid.UUID         `json:"active_profile_id,omitempty"`
		BackupOperations []*BackupOperation `json:"backup_operations"`
		AppVersion       string             `json:"app_version"`
		CreatedAt        time.Time          `json:"created_at"`
		UpdatedAt        time.Time          `json:"updated_at"`
	}

	StorageCredentials struct {
		Endpoint, AccessKeyID, SecretKey, Region string
	}
)

func NewAppState(version string) *AppState {
	now := time.Now().UTC()
	return &AppState{
		Profiles:         make([]*Profile, 0),
		BackupOperations: make([]*BackupOperation, 0),
		AppVersion:       version,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// FindProfile returns the profile with the given id, or nil.
func (s *AppState) FindProfile(id uuid.UUID) *Profile {
	for _, p := range s.Profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}
