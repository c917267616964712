package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

func TestLocalProjectFSAdapter_WriteFileAtomic_Create(t *testing.T) {
	fs := NewLocalProjectFSAdapter()
	dir := t.TempDir()
	target := m.Path(filepath.Join(dir, "out.p8"))

	err := fs.WriteFileAtomic(target, []byte("cart data"), 0o644)
	require.NoError(t, err)

	content, err := fs.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "cart data", string(content))
}

func TestLocalProjectFSAdapter_WriteFileAtomic_Replace(t *testing.T) {
	fs := NewLocalProjectFSAdapter()
	dir := t.TempDir()
	target := m.Path(filepath.Join(dir, "out.p8"))

	require.NoError(t, fs.WriteFileAtomic(target, []byte("first"), 0o644))
	require.NoError(t, fs.WriteFileAtomic(target, []byte("second"), 0o644))

	content, err := fs.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestLocalProjectFSAdapter_WriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	fs := NewLocalProjectFSAdapter()
	dir := t.TempDir()
	target := m.Path(filepath.Join(dir, "out.p8"))

	require.NoError(t, fs.WriteFileAtomic(target, []byte("data"), 0o644))

	entries, err := fs.ReadDir(m.Path(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.p8", entries[0].Name())
}

func TestLocalProjectFSAdapter_WriteFileAtomic_MissingDir(t *testing.T) {
	fs := NewLocalProjectFSAdapter()
	target := m.Path(filepath.Join(t.TempDir(), "missing", "out.p8"))

	err := fs.WriteFileAtomic(target, []byte("data"), 0o644)
	assert.Error(t, err)
}

func TestLocalProjectFSAdapter_ReadDirSorted(t *testing.T) {
	fs := NewLocalProjectFSAdapter()
	dir := t.TempDir()

	for _, name := range []string{"zeta.lua", "alpha.lua", "menu.lua"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	entries, err := fs.ReadDir(m.Path(dir))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha.lua", entries[0].Name())
	assert.Equal(t, "menu.lua", entries[1].Name())
	assert.Equal(t, "zeta.lua", entries[2].Name())
}
