package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/kokushi/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dbDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dbDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dbDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o600))

	backend, err := OpenBackend(filePath, false)
	if err == nil {
		backend.Close()
	}
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTransaction(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	called := false
	err = backend.WithTransaction(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	err = backend.WithTransaction(ctx, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []byte("qrec:118a1"), makeQuestionKey("118A1"))
	assert.Equal(t, "118a1", questionIDFromKey(makeQuestionKey("118A1")))

	// Group keys sort in dictionary order.
	k9 := makeSynonymGroupKey(9)
	k10 := makeSynonymGroupKey(10)
	k300 := makeSynonymGroupKey(300)
	assert.Less(t, string(k9), string(k10))
	assert.Less(t, string(k10), string(k300))
}
