package domain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

func TestScaffolder_CreateProducesScannableProject(t *testing.T) {
	root := m.Path(filepath.Join(t.TempDir(), "mygame"))

	fs := adapter.NewLocalProjectFSAdapter()
	require.NoError(t, NewScaffolder(fs).Create(root, "mygame"))

	tabs, diags, err := NewScanner(fs, false, nil).Scan(context.Background(), root, m.LayoutFolderPerTab)
	require.NoError(t, err)

	// picobuild.yaml at the root is not a tab, so it shows up as a loose
	// file warning; the scaffolded tabs themselves are clean.
	require.Len(t, tabs, 2)
	assert.Equal(t, "0_main", tabs[0].Name)
	assert.Equal(t, "1_util", tabs[1].Name)
	assert.False(t, tabs[0].Empty)
	assert.False(t, tabs[1].Empty)
	require.Len(t, diags, 1)
	assert.Equal(t, m.CodeLooseFile, diags[0].Code)

	require.NoError(t, NewAssembler(fs).AssembleAll(context.Background(), tabs, 1))
	assert.Contains(t, string(tabs[0].Text), "mygame")
}

func TestScaffolder_RefusesExistingDirectory(t *testing.T) {
	root := m.Path(t.TempDir())

	err := NewScaffolder(adapter.NewLocalProjectFSAdapter()).Create(root, "game")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
