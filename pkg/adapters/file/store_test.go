package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/stater/pkg/adapters/file"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunStateStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()
	key := domain.StateKey{ChatID: -100123, ThreadID: 4}

	require.NoError(t, store.Set(ctx, key, "menu"))

	path := filepath.Join(dir, "chat_-100123_thread_4.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state": "menu"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, store.Set(ctx, key, domain.DefaultState))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_9.json"), []byte("{not json"), 0644))

	_, err := store.Get(context.Background(), domain.StateKey{ChatID: 9})
	assert.Error(t, err)
}
