package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"picobuild.dev/pkg/picobuild/internal/controller"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show a previously saved build report",
		Long:  "Load the build report written by `picobuild build --report <path>` and display it.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := viper.GetString(reportConfigKey)
			if path == "" {
				return fmt.Errorf("no report path configured; pass --report or set %q", reportConfigKey)
			}

			report, err := reportStore.Load(m.Path(path))
			if err != nil {
				return err
			}

			return controller.NewSimpleUI(cmd).DisplayReport(report)
		},
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
