// Package controller provides output adapters for displaying build results.
package controller

import (
	"os"

	"golang.org/x/term"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// UI defines the interface for presenting build results. Implementations can
// use different output methods (plain text, TUI).
type UI interface {
	// DisplayReport prints the outcome of a build: every diagnostic as a
	// distinct line, then a summary.
	DisplayReport(report m.BuildReport) error

	// DisplayTabs prints the tab inventory of a project (name, fragment
	// count, assembled size) together with any scan warnings.
	DisplayTabs(tabs []m.TabUnit, diags []m.Diagnostic) error
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
