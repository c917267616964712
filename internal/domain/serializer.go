package domain

import (
	"bytes"
	"log/slog"

	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// Serializer renders a validated, ordered tab set into the runtime's
// section-delimited cart format and writes it to disk.
type Serializer interface {
	// Render produces the full cart byte sequence in memory.
	Render(tabs []m.TabUnit, format m.CartFormat) []byte

	// Write places the rendered cart at path with a single replace-or-create
	// operation; a half-written cart is never visible.
	Write(path m.Path, cart []byte) error
}

type serializer struct {
	fs adapter.ProjectFSAdapter
}

// NewSerializer constructs a Serializer backed by the provided filesystem
// adapter.
func NewSerializer(fs adapter.ProjectFSAdapter) Serializer {
	return &serializer{fs: fs}
}

// Render emits header lines, the code section line, then every tab in
// ordinal order. Tabs after the first are preceded by the format's marker
// line. Content is copied verbatim; Render never reorders, renames or
// deduplicates.
func (s *serializer) Render(tabs []m.TabUnit, format m.CartFormat) []byte {
	var buf bytes.Buffer

	for _, line := range format.Header {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if format.CodeSection != "" {
		buf.WriteString(format.CodeSection)
		buf.WriteByte('\n')
	}

	for i, tab := range tabs {
		if i > 0 {
			buf.WriteString(format.MarkerLine(tab.Ordinal))
			buf.WriteByte('\n')
		}

		buf.Write(tab.Text)

		if len(tab.Text) == 0 || tab.Text[len(tab.Text)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

func (s *serializer) Write(path m.Path, cart []byte) error {
	if err := s.fs.WriteFileAtomic(path, cart, 0o644); err != nil {
		return &IOError{Path: path, Err: err}
	}

	slog.Info("cart written", "path", path, "bytes", len(cart))

	return nil
}
