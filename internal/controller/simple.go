package controller

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayReport prints every diagnostic on its own line, then the outcome.
func (s *SimpleUI) DisplayReport(report m.BuildReport) error {
	for _, diag := range report.Diagnostics {
		s.printDiagnostic(diag)
	}

	if report.Failed() {
		s.printf("build failed at %s stage (%d error(s), %d warning(s))\n",
			report.Stage, len(report.Errors()), len(report.Warnings()))

		return nil
	}

	if report.ArtifactPath != "" {
		s.printf("built %d tab(s) -> %s\n", report.TabCount, report.ArtifactPath)
	} else {
		s.printf("validated %d tab(s), nothing written\n", report.TabCount)
	}

	return nil
}

// DisplayTabs renders the tab inventory as a table, warnings first.
func (s *SimpleUI) DisplayTabs(tabs []m.TabUnit, diags []m.Diagnostic) error {
	for _, diag := range diags {
		s.printDiagnostic(diag)
	}

	sorted := make([]m.TabUnit, len(tabs))
	copy(sorted, tabs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Ordinal < sorted[j].Ordinal
	})

	totalBytes := 0

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"#", "Tab", "Fragments", "Bytes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
	})

	for _, tab := range sorted {
		table.Append([]string{
			fmt.Sprintf("%d", tab.Ordinal),
			tab.Name,
			fmt.Sprintf("%d", len(tab.Files)),
			fmt.Sprintf("%d", len(tab.Text)),
		})

		totalBytes += len(tab.Text)
	}

	table.SetFooter([]string{
		"",
		fmt.Sprintf("%d tab(s)", len(sorted)),
		"",
		fmt.Sprintf("%d", totalBytes),
	})

	table.Render()
	s.printf("\n%s", buf.String())

	return nil
}

func (s *SimpleUI) printDiagnostic(diag m.Diagnostic) {
	prefix := "warning"
	if diag.Severity == m.SeverityError {
		prefix = "error"
	}

	location := ""

	switch {
	case diag.Tab != "" && diag.File != "":
		location = fmt.Sprintf(" [tab %s, %s]", diag.Tab, diag.File)
	case diag.Tab != "":
		location = fmt.Sprintf(" [tab %s]", diag.Tab)
	case diag.File != "":
		location = fmt.Sprintf(" [%s]", diag.File)
	}

	s.printf("%s (%s)%s: %s\n", prefix, diag.Code, location, diag.Message)
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}
