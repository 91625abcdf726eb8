package pollclient

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStartsEmpty(t *testing.T) {
	m, err := OpenMemory(filepath.Join(t.TempDir(), "voted.json"))
	require.NoError(t, err)

	_, ok := m.Get("poll-1")
	assert.False(t, ok)
}

func TestMemoryPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "voted.json")

	m, err := OpenMemory(path)
	require.NoError(t, err)
	require.NoError(t, m.Set("poll-1", "opt-cats"))
	require.NoError(t, m.Set("poll-2", "opt-b"))

	reopened, err := OpenMemory(path)
	require.NoError(t, err)

	got, ok := reopened.Get("poll-1")
	assert.True(t, ok)
	assert.Equal(t, "opt-cats", got)
	got, ok = reopened.Get("poll-2")
	assert.True(t, ok)
	assert.Equal(t, "opt-b", got)
}

func TestMemoryOverwriteKeepsLatest(t *testing.T) {
	m, err := OpenMemory(filepath.Join(t.TempDir(), "voted.json"))
	require.NoError(t, err)

	require.NoError(t, m.Set("poll-1", "opt-a"))
	require.NoError(t, m.Set("poll-1", "opt-b"))

	got, _ := m.Get("poll-1")
	assert.Equal(t, "opt-b", got)
}
