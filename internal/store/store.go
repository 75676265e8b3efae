package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"nimbus/internal/types"
)

// MaxOperationHistory bounds the persisted operation history. The newest
// entries win, the oldest are evicted on append.
const MaxOperationHistory = 100

var ErrProfileNotFound = errors.New("profile not found")

type (
	// Store owns the persisted application state. Load returns the whole
	// document, Save rewrites it atomically. Update runs a single
	// load-mutate-save sequence; concurrent mutations are serialized
	// internally so callers never interleave partial writes.
	Store interface {
		Load(ctx context.Context) (*types.AppState, error)
		Save(ctx context.Context, state *types.AppState) error
		Update(ctx context.Context, mutate func(state *types.AppState) error) error

		AppendOperations(ctx context.Context, ops ...*types.BackupOperation) error
		OperationsForProfile(ctx context.Context, profileID uuid.UUID) ([]*types.BackupOperation, error)
		ClearOperations(ctx context.Context) (int, error)
	}
)
