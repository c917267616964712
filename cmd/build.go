package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"picobuild.dev/pkg/picobuild/internal/controller"
	"picobuild.dev/pkg/picobuild/internal/domain"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [root]",
		Short: "Compile the project into a cart",
		Long: `Scan the project root, assemble every tab, validate the result against
the runtime limits and write the cart. Fails without writing anything when a
constraint is violated; every violation is reported, not just the first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := parseRoot(args)
			orchestrator := domain.NewOrchestrator(fsAdapter, viper.GetBool(recursiveConfigKey), domain.NopSink{})

			report := orchestrator.Build(cmd.Context(), buildArgs(root))

			ui := controller.NewSimpleUI(cmd)
			if err := ui.DisplayReport(report); err != nil {
				return err
			}

			if err := saveReport(report); err != nil {
				return err
			}

			if report.Failed() {
				return fmt.Errorf("build failed with %d error(s)", len(report.Errors()))
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

// saveReport persists the build report when --report is set. Failure and
// success reports are both saved; a failed save fails the command.
func saveReport(report m.BuildReport) error {
	path := viper.GetString(reportConfigKey)
	if path == "" {
		return nil
	}

	if err := reportStore.Save(m.Path(path), report); err != nil {
		slog.Error("failed to save build report", "path", path, "error", err)
		return err
	}

	return nil
}
