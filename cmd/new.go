package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

// newCmd represents the new command.
var newCmd = newNewCmd()

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <dir>",
		Short: "Scaffold a new project",
		Long: `Create a new project directory with the folder-per-tab convention the
scanner expects: two starter tab folders with sample fragments and a
picobuild.yaml. Refuses to overwrite an existing directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := m.Path(args[0])

			cartName := viper.GetString(cartConfigKey)
			if cartName == "" || cartName == defaultCartName {
				cartName = filepath.Base(args[0])
			}

			if err := scaffolder.Create(root, cartName); err != nil {
				return err
			}

			cmd.Printf("created project %s (cart %q)\n", root, cartName)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newCmd)
}
