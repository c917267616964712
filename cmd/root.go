// Package cmd provides the root command and CLI setup for picobuild.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	"picobuild.dev/pkg/picobuild/internal/domain"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

var fsAdapter adapter.ProjectFSAdapter
var reportStore adapter.ReportStore
var scaffolder domain.Scaffolder

// Root-level flags shared by the build-like commands.
var outFlag string
var cartFlag string
var layoutFlag string
var maxTabsFlag int
var maxTabBytesFlag int
var parallelFlag int
var reportFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalProjectFSAdapter()
	reportStore = adapter.NewReportStore(fsAdapter)
	scaffolder = domain.NewScaffolder(fsAdapter)
}

const rootLongDescription = `Picobuild compiles a directory tree of PICO-8 source fragments into a
single .p8 cartridge. Each subfolder of the project root becomes one editor
tab; the files inside it are concatenated in a deterministic order, validated
against the runtime's tab limits and written as one cart.

An optional ` + domain.ManifestName + ` file (one name per line) overrides the
lexicographic order, both for tabs at the project root and for fragments
inside a tab folder.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picobuild",
		Short: "Compile a source tree into a PICO-8 cart",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(verboseFlag)
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&outFlag, outFlagName, "o",
		viper.GetString(outConfigKey), "cart output path (default <root>/<cart>.p8)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outFlagName), outConfigKey)

	cmd.PersistentFlags().StringVar(&cartFlag, cartFlagName,
		viper.GetString(cartConfigKey), "cart name used for the default output path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(cartFlagName), cartConfigKey)

	cmd.PersistentFlags().StringVar(&layoutFlag, layoutFlagName,
		viper.GetString(layoutConfigKey), "layout mode: folder-per-tab or file-per-tab")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(layoutFlagName), layoutConfigKey)

	cmd.PersistentFlags().IntVar(&maxTabsFlag, maxTabsFlagName,
		viper.GetInt(maxTabsConfigKey), "maximum number of tabs the runtime accepts")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxTabsFlagName), maxTabsConfigKey)

	cmd.PersistentFlags().IntVar(&maxTabBytesFlag, maxTabBytesFlagName,
		viper.GetInt(maxTabBytesConfigKey), "maximum assembled size per tab in bytes (0 = unconstrained)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxTabBytesFlagName), maxTabBytesConfigKey)

	cmd.PersistentFlags().IntVarP(&parallelFlag, parallelFlagName, "p",
		viper.GetInt(parallelConfigKey), "number of parallel workers for tab assembly")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.PersistentFlags().StringVar(&reportFlag, reportFlagName,
		viper.GetString(reportConfigKey), "write the build report to this file as YAML")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(reportFlagName), reportConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "debug logging")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// parseRoot resolves the project root from positional args, defaulting to the
// working directory.
func parseRoot(args []string) m.Path {
	if len(args) > 0 {
		return m.Path(args[0])
	}

	return m.Path(".")
}

// buildArgs assembles the orchestrator arguments for one invocation from the
// resolved configuration.
func buildArgs(root m.Path) domain.BuildArgs {
	return domain.BuildArgs{
		Root:    root,
		Out:     resolveOut(root),
		Layout:  m.ParseLayoutMode(viper.GetString(layoutConfigKey)),
		Profile: resolveProfile(),
		Format:  resolveFormat(),
		Workers: viper.GetInt(parallelConfigKey),
	}
}
