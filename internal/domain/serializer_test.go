package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

func newTestSerializer() Serializer {
	return NewSerializer(adapter.NewLocalProjectFSAdapter())
}

func TestSerializer_RenderDefaultFormat(t *testing.T) {
	tabs := []m.TabUnit{
		{Name: "intro", Ordinal: 0, Text: []byte("print(\"hi\")")},
		{Name: "menu", Ordinal: 1, Text: []byte("function menu() end")},
	}

	cart := newTestSerializer().Render(tabs, m.DefaultCartFormat())

	want := "pico-8 cartridge // http://www.pico-8.com\n" +
		"version 42\n" +
		"__lua__\n" +
		"print(\"hi\")\n" +
		"-->8\n" +
		"function menu() end\n"
	assert.Equal(t, want, string(cart))
}

func TestSerializer_RenderOrdinalMarker(t *testing.T) {
	format := m.CartFormat{
		CodeSection: "__code__",
		TabMarker:   "--[[tab {n}]]",
	}

	tabs := []m.TabUnit{
		{Name: "a", Ordinal: 0, Text: []byte("a\n")},
		{Name: "b", Ordinal: 1, Text: []byte("b\n")},
		{Name: "c", Ordinal: 2, Text: []byte("c\n")},
	}

	cart := newTestSerializer().Render(tabs, format)

	want := "__code__\na\n--[[tab 1]]\nb\n--[[tab 2]]\nc\n"
	assert.Equal(t, want, string(cart))
}

func TestSerializer_RenderPreservesTrailingNewlines(t *testing.T) {
	// A tab already ending in a newline gets no extra one; a tab without one
	// gets a single newline so the next marker starts its own line.
	tabs := []m.TabUnit{
		{Name: "a", Ordinal: 0, Text: []byte("ends with newline\n")},
		{Name: "b", Ordinal: 1, Text: []byte("no newline")},
	}

	cart := newTestSerializer().Render(tabs, m.CartFormat{TabMarker: "-->8"})

	assert.Equal(t, "ends with newline\n-->8\nno newline\n", string(cart))
}

func TestSerializer_RenderEmptyProject(t *testing.T) {
	cart := newTestSerializer().Render(nil, m.DefaultCartFormat())

	want := "pico-8 cartridge // http://www.pico-8.com\nversion 42\n__lua__\n"
	assert.Equal(t, want, string(cart))
}

func TestSerializer_WriteAtomic(t *testing.T) {
	s := newTestSerializer()
	path := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	require.NoError(t, s.Write(path, []byte("cart one")))
	require.NoError(t, s.Write(path, []byte("cart two")))

	content, err := adapter.NewLocalProjectFSAdapter().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cart two", string(content))
}

func TestSerializer_WriteFailure(t *testing.T) {
	s := newTestSerializer()
	path := m.Path(filepath.Join(t.TempDir(), "missing-dir", "game.p8"))

	err := s.Write(path, []byte("cart"))

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, path, ioErr.Path)
}
