package report

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanward/scanward/internal/export"
	"github.com/scanward/scanward/internal/store"
	"github.com/scanward/scanward/pkg/shared/config"
	"github.com/scanward/scanward/pkg/shared/logger"
)

// RunOptionsReport holds the arguments for the report command.
type RunOptionsReport struct {
	Format     string
	OutputFile string
}

var (
	AppConfig          *config.Config
	reportOptions      RunOptionsReport
	exampleReportUsage = `  # Print a stored report as JSON
  scanward report 9f8c2a4e-1b6d-4f70-92d3-4a51f0a7b3c1

  # Render a stored report to HTML
  scanward report --format html --output report.html 9f8c2a4e-1b6d-4f70-92d3-4a51f0a7b3c1`
)

var ReportCmd = &cobra.Command{
	Use:                   "report [--format FORMAT] [--output PATH] SCAN_ID",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReportUsage,
	Short:                 "Renders a stored audit report",
	RunE:                  runReportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runReportCommand executes the report command.
func runReportCommand(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one SCAN_ID argument is required")
	}
	scanID := args[0]

	logger := logger.NewLogger(AppConfig, "core-report")

	format, err := export.ParseFormat(reportOptions.Format)
	if err != nil {
		return err
	}

	storePath := config.SetThen(AppConfig.Store.Path, config.DefaultStoreConfig().Path)
	s, err := store.Open(storePath, logger.Named("store"))
	if err != nil {
		logger.Error("cannot open report store", "path", storePath, "error", err)
		return err
	}
	defer s.Close()

	result, err := s.Load(cmd.Context(), scanID)
	if err != nil {
		logger.Error("cannot load report", "scan_id", scanID, "error", err)
		return err
	}

	if reportOptions.OutputFile == "" {
		return export.Write(os.Stdout, result, format)
	}
	if err := export.WriteFile(reportOptions.OutputFile, result, format); err != nil {
		logger.Error("failed to write report", "error", err)
		return err
	}
	logger.Info("report rendered", "scan_id", scanID, "output", reportOptions.OutputFile)
	return nil
}

func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.Format, "format", "f", "json", "Report format: json, csv, sarif or html.")
	ReportCmd.Flags().StringVarP(&reportOptions.OutputFile, "output", "o", "", "Write the report to a file instead of stdout.")
	ReportCmd.Flags().BoolP("help", "h", false, "Show help for the report command.")
}
