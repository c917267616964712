// Package domain implements the directory-to-cart build pipeline: scanning
// tab units on disk, assembling their fragments, validating the result
// against runtime constraints and serializing the final cart.
package domain

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// ManifestName is the optional line-oriented ordering manifest. At the
// project root it orders tabs; inside a tab folder it orders fragments.
// Lines name one entry each; blank lines and #-comments are skipped.
const ManifestName = ".taborder"

// binarySniffLen bounds how much of a file is inspected for binary content.
const binarySniffLen = 1024

// Scanner discovers the tab units of a project without assembling them.
type Scanner interface {
	// Scan walks root according to mode and returns the ordered tab units
	// together with any non-fatal diagnostics. A structural problem (missing
	// root, not a directory) returns a *ScanError.
	Scan(ctx context.Context, root m.Path, mode m.LayoutMode) ([]m.TabUnit, []m.Diagnostic, error)
}

type scanner struct {
	fs adapter.ProjectFSAdapter
	// recursive includes fragments from nested folders inside a tab folder.
	recursive bool
	sink      EventSink
}

// NewScanner constructs a Scanner backed by the provided filesystem adapter.
// When recursive is true, fragments are collected from nested folders inside
// each tab folder; otherwise only the folder's immediate files are used.
func NewScanner(fs adapter.ProjectFSAdapter, recursive bool, sink EventSink) Scanner {
	if sink == nil {
		sink = NopSink{}
	}

	return &scanner{fs: fs, recursive: recursive, sink: sink}
}

func (s *scanner) Scan(ctx context.Context, root m.Path, mode m.LayoutMode) ([]m.TabUnit, []m.Diagnostic, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, nil, &ScanError{Root: root, Reason: fmt.Sprintf("project root not found: %v", err)}
	}

	if !info.IsDir() {
		return nil, nil, &ScanError{Root: root, Reason: "project root is not a directory"}
	}

	entries, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, nil, &ScanError{Root: root, Reason: fmt.Sprintf("list project root: %v", err)}
	}

	var (
		tabs  []m.TabUnit
		diags []m.Diagnostic
	)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, diags, err
		}

		name := entry.Name()
		if name == ManifestName {
			continue
		}

		switch mode {
		case m.LayoutFilePerTab:
			if entry.IsDir() {
				slog.Debug("ignoring directory in file-per-tab mode", "dir", name)
				continue
			}

			unit, ok := s.fileUnit(root, name, &diags)
			if ok {
				tabs = append(tabs, unit)
			}
		default: // folder-per-tab
			if !entry.IsDir() {
				diags = s.warn(diags, m.Diagnostic{
					Severity: m.SeverityWarning,
					Stage:    m.StageScan,
					Code:     m.CodeLooseFile,
					File:     s.fs.JoinPath(string(root), name),
					Message:  fmt.Sprintf("file %q sits outside any tab folder and is ignored", name),
				})

				continue
			}

			unit, err := s.folderUnit(root, name, &diags)
			if err != nil {
				return nil, diags, err
			}

			tabs = append(tabs, unit)
		}
	}

	tabs = s.orderTabs(root, tabs)

	for i := range tabs {
		tabs[i].Ordinal = i
	}

	slog.Debug("scan complete", "root", root, "tabs", len(tabs), "warnings", len(diags))

	return tabs, diags, nil
}

// folderUnit builds the TabUnit for one tab folder, applying the folder's
// ordering manifest when present.
func (s *scanner) folderUnit(root m.Path, folder string, diags *[]m.Diagnostic) (m.TabUnit, error) {
	dir := s.fs.JoinPath(string(root), folder)

	names, err := s.fragmentNames(dir, "")
	if err != nil {
		return m.TabUnit{}, &ScanError{Root: root, Reason: fmt.Sprintf("list tab folder %q: %v", folder, err)}
	}

	// ReadDir returns entries sorted by filename; for nested fragments the
	// relative path is the explicit sort key.
	sort.Strings(names)

	names = s.applyManifest(dir, folder, names)

	unit := m.TabUnit{Name: folder}

	for _, name := range names {
		path := s.fs.JoinPath(string(dir), name)

		if s.looksBinary(path) {
			*diags = s.warn(*diags, m.Diagnostic{
				Severity: m.SeverityWarning,
				Stage:    m.StageScan,
				Code:     m.CodeBinaryFile,
				Tab:      folder,
				File:     path,
				Message:  fmt.Sprintf("excluding binary file %q from tab %q", name, folder),
			})

			continue
		}

		unit.Files = append(unit.Files, m.FragmentFile{Name: name, FullPath: path})
	}

	if len(unit.Files) == 0 {
		unit.Empty = true
		*diags = s.warn(*diags, m.Diagnostic{
			Severity: m.SeverityWarning,
			Stage:    m.StageScan,
			Code:     m.CodeEmptyTab,
			Tab:      folder,
			Message:  fmt.Sprintf("tab folder %q contains no content files", folder),
		})
	}

	return unit, nil
}

// fileUnit builds a single-fragment TabUnit for file-per-tab mode. The tab
// name is the filename without its extension.
func (s *scanner) fileUnit(root m.Path, name string, diags *[]m.Diagnostic) (m.TabUnit, bool) {
	path := s.fs.JoinPath(string(root), name)

	if s.looksBinary(path) {
		*diags = s.warn(*diags, m.Diagnostic{
			Severity: m.SeverityWarning,
			Stage:    m.StageScan,
			Code:     m.CodeBinaryFile,
			File:     path,
			Message:  fmt.Sprintf("excluding binary file %q", name),
		})

		return m.TabUnit{}, false
	}

	tabName := name
	if dot := strings.LastIndex(tabName, "."); dot > 0 {
		tabName = tabName[:dot]
	}

	return m.TabUnit{
		Name:  tabName,
		Files: []m.FragmentFile{{Name: name, FullPath: path}},
	}, true
}

// fragmentNames lists the fragment file names under dir, prefixed with rel
// when descending into nested folders.
func (s *scanner) fragmentNames(dir m.Path, rel string) ([]string, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, entry := range entries {
		name := entry.Name()
		if name == ManifestName {
			continue
		}

		if entry.IsDir() {
			if !s.recursive {
				slog.Debug("ignoring nested folder", "dir", s.fs.JoinPath(string(dir), name))
				continue
			}

			nested, err := s.fragmentNames(s.fs.JoinPath(string(dir), name), joinRel(rel, name))
			if err != nil {
				return nil, err
			}

			names = append(names, nested...)

			continue
		}

		names = append(names, joinRel(rel, name))
	}

	return names, nil
}

// applyManifest reorders names according to the folder's manifest, if any.
// Names listed in the manifest come first in manifest order; everything else
// keeps its lexicographic position after them.
func (s *scanner) applyManifest(dir m.Path, tab string, names []string) []string {
	manifest, err := s.readManifest(s.fs.JoinPath(string(dir), ManifestName))
	if err != nil || len(manifest) == 0 {
		return names
	}

	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	ordered := make([]string, 0, len(names))
	listed := make(map[string]bool, len(manifest))

	for _, name := range manifest {
		if !present[name] {
			slog.Warn("manifest names a missing file", "tab", tab, "file", name)
			continue
		}

		if listed[name] {
			continue
		}

		listed[name] = true
		ordered = append(ordered, name)
	}

	for _, name := range names {
		if !listed[name] {
			ordered = append(ordered, name)
		}
	}

	return ordered
}

// orderTabs applies the project-root manifest to the tab order, defaulting to
// lexicographic order by tab name.
func (s *scanner) orderTabs(root m.Path, tabs []m.TabUnit) []m.TabUnit {
	sort.Slice(tabs, func(i, j int) bool {
		return tabs[i].Name < tabs[j].Name
	})

	manifest, err := s.readManifest(s.fs.JoinPath(string(root), ManifestName))
	if err != nil || len(manifest) == 0 {
		return tabs
	}

	byName := make(map[string]int, len(tabs))
	for i, tab := range tabs {
		byName[tab.Name] = i
	}

	ordered := make([]m.TabUnit, 0, len(tabs))
	taken := make(map[string]bool, len(manifest))

	for _, name := range manifest {
		i, ok := byName[name]
		if !ok {
			slog.Warn("root manifest names a missing tab", "tab", name)
			continue
		}

		if taken[name] {
			continue
		}

		taken[name] = true
		ordered = append(ordered, tabs[i])
	}

	for _, tab := range tabs {
		if !taken[tab.Name] {
			ordered = append(ordered, tab)
		}
	}

	return ordered
}

// readManifest parses a line-oriented ordering manifest. A missing manifest
// is not an error; it just means lexicographic order applies.
func (s *scanner) readManifest(path m.Path) ([]string, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entries = append(entries, line)
	}

	return entries, nil
}

// looksBinary sniffs the start of the file for NUL bytes. Errors are left
// for the assembler to report with full context.
func (s *scanner) looksBinary(path m.Path) bool {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return false
	}

	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}

	return bytes.IndexByte(data, 0) >= 0
}

func (s *scanner) warn(diags []m.Diagnostic, diag m.Diagnostic) []m.Diagnostic {
	s.sink.Emit(diag)
	return append(diags, diag)
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}

	return rel + "/" + name
}
