package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanward/scanward/cmd/fetch"
	"github.com/scanward/scanward/cmd/history"
	"github.com/scanward/scanward/cmd/report"
	"github.com/scanward/scanward/cmd/scan"
	"github.com/scanward/scanward/cmd/version"
	"github.com/scanward/scanward/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scanward [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Scanward audits source trees for security and quality issues.",
		Long: `Scanward walks a source tree, matches a catalogue of security and quality
rules against every file, optionally asks a local AI endpoint for a deeper
review, and aggregates everything into a scored, persisted report.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(report.ReportCmd)
	rootCmd.AddCommand(history.HistoryCmd)
	rootCmd.AddCommand(fetch.FetchCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config file %q: %v\n", cfgFile, err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	report.Init(AppConfig)
	history.Init(AppConfig)
	fetch.Init(AppConfig)
}
