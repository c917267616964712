package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"picobuild.dev/pkg/picobuild/internal/controller"
	"picobuild.dev/pkg/picobuild/internal/domain"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// infoCmd represents the info command.
var infoCmd = newInfoCmd()

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [root]",
		Short: "Show the tab inventory without building",
		Long: `Scan and assemble the project like a build would, then print the tab
table (name, fragment count, assembled size) and any warnings. Constraint
violations are shown but do not fail the command; nothing is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := parseRoot(args)
			recursive := viper.GetBool(recursiveConfigKey)

			scanner := domain.NewScanner(fsAdapter, recursive, domain.NopSink{})

			tabs, diags, err := scanner.Scan(cmd.Context(), root, m.ParseLayoutMode(viper.GetString(layoutConfigKey)))
			if err != nil {
				return err
			}

			assembler := domain.NewAssembler(fsAdapter)
			if err := assembler.AssembleAll(cmd.Context(), tabs, viper.GetInt(parallelConfigKey)); err != nil {
				return err
			}

			validator := domain.NewValidator(domain.NopSink{})
			diags = append(diags, validator.Validate(tabs, resolveProfile())...)

			return controller.NewSimpleUI(cmd).DisplayTabs(tabs, diags)
		},
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
