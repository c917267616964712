// Package model defines the data structures for cart compilation.
package model

import (
	"strconv"
	"strings"
)

// Path represents a file system path.
type Path string

// LayoutMode defines how the filesystem structure maps to cart tabs.
type LayoutMode string

const (
	// LayoutFolderPerTab maps every immediate subdirectory of the project
	// root to one tab; the files inside it are concatenated in order.
	LayoutFolderPerTab LayoutMode = "folder-per-tab"

	// LayoutFilePerTab maps every regular file at the project root to its
	// own tab. Subdirectories are ignored in this mode.
	LayoutFilePerTab LayoutMode = "file-per-tab"
)

// ParseLayoutMode returns the LayoutMode for value, falling back to
// LayoutFolderPerTab for unknown values.
func ParseLayoutMode(value string) LayoutMode {
	if LayoutMode(value) == LayoutFilePerTab {
		return LayoutFilePerTab
	}

	return LayoutFolderPerTab
}

// FragmentFile is one on-disk text file contributing to a tab.
type FragmentFile struct {
	// Name is the path of the fragment relative to its tab folder.
	Name string
	// FullPath locates the fragment on disk.
	FullPath Path
}

// TabUnit represents one code section of the final cart.
type TabUnit struct {
	// Name is derived from the folder (or file) the unit was discovered as.
	Name string
	// Ordinal is the position of the tab in the final cart. Ordinals form a
	// contiguous sequence starting at 0.
	Ordinal int
	// Files are the fragments belonging to this unit, in assembly order.
	Files []FragmentFile
	// Text is the assembled content. Populated by the assembler; nil before.
	Text []byte
	// Empty marks units discovered with zero content files.
	Empty bool
}

// ConstraintProfile describes the limits imposed by the target runtime.
type ConstraintProfile struct {
	// MaxTabs is the maximum number of tabs a cart may contain.
	MaxTabs int
	// MaxTabBytes is the maximum assembled size of a single tab.
	// Zero means unconstrained.
	MaxTabBytes int
}

// DefaultMaxTabs is the most conservative known editor tab limit. The real
// runtime limit is not documented, so it stays overridable via configuration.
const DefaultMaxTabs = 16

// DefaultConstraints returns the ConstraintProfile used when no overrides are
// configured.
func DefaultConstraints() ConstraintProfile {
	return ConstraintProfile{MaxTabs: DefaultMaxTabs}
}

// OrdinalToken is replaced with the tab ordinal when it appears in a
// CartFormat tab marker.
const OrdinalToken = "{n}"

// CartFormat describes the section-delimited output format of the target
// runtime. The exact marker syntax the runtime expects is unconfirmed, so
// every piece is configuration rather than a hard-coded literal.
type CartFormat struct {
	// Header lines emitted before any section.
	Header []string
	// CodeSection is the line opening the code section.
	CodeSection string
	// TabMarker is the line separating consecutive tabs. An OrdinalToken
	// inside it is replaced with the ordinal of the tab that follows.
	TabMarker string
}

// DefaultCartFormat returns the .p8 format as the PICO-8 editor writes it.
func DefaultCartFormat() CartFormat {
	return CartFormat{
		Header: []string{
			"pico-8 cartridge // http://www.pico-8.com",
			"version 42",
		},
		CodeSection: "__lua__",
		TabMarker:   "-->8",
	}
}

// MarkerLine renders the marker that precedes the tab with the given ordinal.
func (f CartFormat) MarkerLine(ordinal int) string {
	return strings.ReplaceAll(f.TabMarker, OrdinalToken, strconv.Itoa(ordinal))
}
