package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"nimbus/internal/types"
	"nimbus/logger"
)

type jsonStore struct {
	path    string
	version string
	mu      sync.Mutex
}

// NewJSONStore persists AppState as a single pretty-printed JSON document
// at path. The parent directory is created on first save.
func NewJSONStore(path, appVersion string) Store {
	return &jsonStore{path: path, version: appVersion}
}

func (s *jsonStore) Load(ctx context.Context) (*types.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *jsonStore) Save(ctx context.Context, state *types.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *jsonStore) Update(ctx context.Context, mutate func(state *types.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	if err := mutate(state); err != nil {
		return err
	}
	return s.save(state)
}

func (s *jsonStore) AppendOperations(ctx context.Context, ops ...*types.BackupOperation) error {
	if len(ops) == 0 {
		return nil
	}
	return s.Update(ctx, func(state *types.AppState) error {
		for _, op := range ops {
			// newest first, oldest evicted past the cap
			state.BackupOperations = append([]*types.BackupOperation{op}, state.BackupOperations...)
		}
		if len(state.BackupOperations) > MaxOperationHistory {
			state.BackupOperations = state.BackupOperations[:MaxOperationHistory]
		}
		return nil
	})
}

func (s *jsonStore) OperationsForProfile(ctx context.Context, profileID uuid.UUID) ([]*types.BackupOperation, error) {
	state, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(state.BackupOperations, func(op *types.BackupOperation, _ int) bool {
		return op.ProfileID == profileID
	}), nil
}

func (s *jsonStore) ClearOperations(ctx context.Context) (int, error) {
	count := 0
	err := s.Update(ctx, func(state *types.AppState) error {
		count = len(state.BackupOperations)
		state.BackupOperations = make([]*types.BackupOperation, 0)
		return nil
	})
	return count, err
}

func (s *jsonStore) load() (*types.AppState, error) {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return types.NewAppState(s.version), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read state file %s", s.path)
	}

	state := &types.AppState{}
	if err := json.Unmarshal(content, state); err == nil {
		s.normalize(state)
		return state, nil
	}

	// the writer may have been killed mid-write before atomic saves were
	// in place, try to salvage everything up to the last closing brace
	if idx := bytes.LastIndexByte(content, '}'); idx > 0 {
		if err := json.Unmarshal(content[:idx+1], state); err == nil {
			logger.Warn("recovered truncated state file",
				zap.String("path", s.path))
			s.normalize(state)
			return state, nil
		}
	}

	quarantine := s.path + ".corrupted"
	if copyErr := os.WriteFile(quarantine, content, 0600); copyErr == nil {
		logger.Error("state file is corrupted, quarantined",
			zap.String("path", s.path),
			zap.String("quarantine", quarantine))
	}
	return nil, errors.Errorf("state file %s is corrupted and cannot be recovered, original saved to %s", s.path, quarantine)
}

// save writes the document to a temp file and renames it into place so a
// crash mid-write never leaves a half-written state file behind.
func (s *jsonStore) save(state *types.AppState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}

	content, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", s.path)
	}
	return nil
}

func (s *jsonStore) normalize(state *types.AppState) {
	if state.Profiles == nil {
		state.Profiles = make([]*types.Profile, 0)
	}
	if state.BackupOperations == nil {
		state.BackupOperations = make([]*types.BackupOperation, 0)
	}
	if state.AppVersion == "" {
		state.AppVersion = s.version
	}
}
