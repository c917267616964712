package domain

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// Assembler turns each tab's ordered fragments into its assembled text.
type Assembler interface {
	// AssembleAll fills in the Text of every tab in place. Tabs are
	// independent of each other, so they are assembled concurrently up to
	// the worker limit; all of them complete before the call returns.
	AssembleAll(ctx context.Context, tabs []m.TabUnit, workers int) error
}

type assembler struct {
	fs adapter.ProjectFSAdapter
}

// NewAssembler constructs an Assembler backed by the provided filesystem
// adapter.
func NewAssembler(fs adapter.ProjectFSAdapter) Assembler {
	return &assembler{fs: fs}
}

func (a *assembler) AssembleAll(ctx context.Context, tabs []m.TabUnit, workers int) error {
	if workers < 1 {
		workers = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i := range tabs {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			text, err := a.assemble(&tabs[i])
			if err != nil {
				return err
			}

			tabs[i].Text = text

			return nil
		})
	}

	return group.Wait()
}

// assemble concatenates the tab's fragments in their declared order with
// exactly one newline between consecutive fragments. Contents are copied
// verbatim: no trimming, no transformation, so rebuilding an unchanged tree
// yields byte-identical output.
func (a *assembler) assemble(tab *m.TabUnit) ([]byte, error) {
	var buf bytes.Buffer

	for i, file := range tab.Files {
		data, err := a.fs.ReadFile(file.FullPath)
		if err != nil {
			return nil, fmt.Errorf("tab %q: read fragment %s: %w", tab.Name, file.FullPath, err)
		}

		if !utf8.Valid(data) {
			return nil, &EncodingError{Tab: tab.Name, File: file.FullPath}
		}

		if i > 0 {
			buf.WriteByte('\n')
		}

		buf.Write(data)
	}

	slog.Debug("assembled tab", "tab", tab.Name, "fragments", len(tab.Files), "bytes", buf.Len())

	return buf.Bytes(), nil
}
