package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	"picobuild.dev/pkg/picobuild/internal/controller"
	"picobuild.dev/pkg/picobuild/internal/domain"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// plainDebounce coalesces filesystem event bursts in the non-TTY fallback.
const plainDebounce = 400 * time.Millisecond

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [root]",
		Short: "Rebuild the cart whenever the source tree changes",
		Long: `Watch the project root and rebuild on every change. With a terminal
attached this opens an interactive view with a scrollable log panel; without
one it prints a report per rebuild. Quit with q (or ctrl+c).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			root := parseRoot(cmdArgs)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink := domain.NewChannelSink(64)
			orchestrator := domain.NewOrchestrator(fsAdapter, viper.GetBool(recursiveConfigKey), sink)
			args := buildArgs(root)

			watcher, err := adapter.NewProjectWatcher(root)
			if err != nil {
				return err
			}
			defer func() { _ = watcher.Close() }()

			build := func(ctx context.Context) m.BuildReport {
				return orchestrator.Build(ctx, args)
			}

			changes := filterChanges(watcher.Events(), args.Out)

			if controller.IsTTY(os.Stdout) {
				return controller.RunWatch(ctx, controller.WatchArgs{
					Root:        root,
					Build:       build,
					Diagnostics: sink.Events(),
					Changes:     changes,
				})
			}

			return watchPlain(ctx, cmd, build, changes)
		},
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// filterChanges drops events the build itself causes: the artifact, its
// temporary sibling and the log file all live inside the watched tree by
// default and would otherwise retrigger forever.
func filterChanges(in <-chan m.Path, artifact m.Path) <-chan m.Path {
	out := make(chan m.Path, cap(in))
	artifactBase := filepath.Base(string(artifact))

	go func() {
		defer close(out)

		for path := range in {
			base := filepath.Base(string(path))
			if base == artifactBase || base == defaultLogFilename ||
				strings.Contains(base, ".tmp-") {
				continue
			}

			out <- path
		}
	}()

	return out
}

// watchPlain is the non-TTY fallback: one report per rebuild on stdout.
func watchPlain(ctx context.Context, cmd *cobra.Command, build controller.BuildFunc, changes <-chan m.Path) error {
	ui := controller.NewSimpleUI(cmd)

	runOnce := func() error {
		return ui.DisplayReport(build(ctx))
	}

	if err := runOnce(); err != nil {
		return err
	}

	var debounce *time.Timer

	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case path, ok := <-changes:
			if !ok {
				return nil
			}

			cmd.Printf("change detected: %s\n", path)

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(plainDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			if err := runOnce(); err != nil {
				return err
			}
		}
	}
}
