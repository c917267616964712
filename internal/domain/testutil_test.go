package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// writeProject lays out a throwaway project tree. Keys are slash-separated
// paths relative to the root; a key ending in "/" creates an empty directory.
func writeProject(t *testing.T, files map[string]string) m.Path {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))

		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0o750))
			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return m.Path(root)
}

func newTestScanner(recursive bool) Scanner {
	return NewScanner(adapter.NewLocalProjectFSAdapter(), recursive, NopSink{})
}

func newTestAssembler() Assembler {
	return NewAssembler(adapter.NewLocalProjectFSAdapter())
}

// binaryBlob is fragment content that the scanner classifies as binary.
const binaryBlob = "GIF89a\x00\x00\x01\x00"
