package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nimbus/internal/types"
	"nimbus/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewJSONStore(path, "1.0.0-test"), path
}

func TestJSONStore_LoadMissingFile(t *testing.T) {
	st, _ := newTestStore(t)

	state, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Profiles)
	assert.Empty(t, state.BackupOperations)
	assert.Equal(t, "1.0.0-test", state.AppVersion)
}

func TestJSONStore_SaveThenLoad(t *testing.T) {
	st, path := newTestStore(t)
	ctx := context.Background()

	state := types.NewAppState("1.0.0-test")
	profile := types.NewProfile("documents")
	profile.Bucket = "acme-backups"
	state.Profiles = append(state.Profiles, profile)

	require.NoError(t, st.Save(ctx, state))

	// no stray temp file after an atomic save
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Profiles, 1)
	assert.Equal(t, profile.ID, loaded.Profiles[0].ID)
	assert.Equal(t, "aws:acme-backups", loaded.Profiles[0].Destination())
}

func TestJSONStore_HistoryCap(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	profileID := uuid.New()

	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < MaxOperationHistory+1; i++ {
		op := &types.BackupOperation{
			ID:            uuid.New(),
			ProfileID:     profileID,
			OperationType: types.OperationBackup,
			Status:        types.StatusCompleted,
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			LogOutput:     fmt.Sprintf("run %d", i),
		}
		require.NoError(t, st.AppendOperations(ctx, op))
	}

	ops, err := st.OperationsForProfile(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, ops, MaxOperationHistory)

	// newest first, the very first run was evicted
	assert.Equal(t, base.Add(time.Duration(MaxOperationHistory)*time.Hour), ops[0].StartedAt)
	for i := 1; i < len(ops); i++ {
		assert.True(t, ops[i-1].StartedAt.After(ops[i].StartedAt))
	}
	assert.NotEqual(t, "run 0", ops[len(ops)-1].LogOutput)
}

func TestJSONStore_OperationsFilteredByProfile(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	mine, theirs := uuid.New(), uuid.New()

	require.NoError(t, st.AppendOperations(ctx,
		&types.BackupOperation{ID: uuid.New(), ProfileID: mine, StartedAt: time.Now()},
		&types.BackupOperation{ID: uuid.New(), ProfileID: theirs, StartedAt: time.Now()},
	))

	ops, err := st.OperationsForProfile(ctx, mine)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, mine, ops[0].ProfileID)
}

func TestJSONStore_RecoverTruncatedFile(t *testing.T) {
	st, path := newTestStore(t)
	ctx := context.Background()

	state := types.NewAppState("1.0.0-test")
	state.Profiles = append(state.Profiles, types.NewProfile("photos"))
	require.NoError(t, st.Save(ctx, state))

	// simulate a writer killed mid-append
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(content, []byte("garbage")...), 0600))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Profiles, 1)
}

func TestJSONStore_CorruptedFileQuarantined(t *testing.T) {
	st, path := newTestStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0600))

	_, err := st.Load(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(path + ".corrupted")
	assert.NoError(t, statErr)
}

func TestJSONStore_ClearOperations(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendOperations(ctx,
		&types.BackupOperation{ID: uuid.New(), ProfileID: uuid.New(), StartedAt: time.Now()},
		&types.BackupOperation{ID: uuid.New(), ProfileID: uuid.New(), StartedAt: time.Now()},
	))

	count, err := st.ClearOperations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	state, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.BackupOperations)
}
