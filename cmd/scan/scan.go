package scan

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/internal/engine"
	"github.com/scanward/scanward/internal/export"
	"github.com/scanward/scanward/internal/store"
	"github.com/scanward/scanward/pkg/shared"
	"github.com/scanward/scanward/pkg/shared/config"
	sharederrors "github.com/scanward/scanward/pkg/shared/errors"
	"github.com/scanward/scanward/pkg/shared/logger"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	EnableAI       bool
	Workers        int
	ExcludeGlobs   []string
	SeverityFilter string
	Format         string
	OutputFile     string
	NoSave         bool
	S3Bucket       string
	S3Region       string
	S3Prefix       string
}

var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scan a directory with pattern rules only
  scanward scan ./my-project

  # Scan with AI analysis on eligible files
  scanward scan --ai ./my-project

  # Keep only HIGH and CRITICAL findings and render SARIF to a file
  scanward scan --severity HIGH --format sarif --output report.sarif ./my-project

  # Exclude generated folders and bound concurrency
  scanward scan --exclude 'gen*' --exclude 'third_party' -j 4 ./my-project

  # Render HTML and upload the artifact to S3
  scanward scan --format html --output report.html --s3-bucket audit-reports --s3-region eu-west-2 ./my-project`
)

var ScanCmd = &cobra.Command{
	Use:                   "scan [--ai] [--severity LEVEL] [--exclude GLOB] [-j WORKERS] [--format FORMAT] [--output PATH] [--no-save] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans a source tree and produces a scored audit report",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}
	rootPath := args[0]

	format, err := export.ParseFormat(scanOptions.Format)
	if err != nil {
		return err
	}

	var reportStore engine.ReportStore
	if !scanOptions.NoSave {
		storePath := config.SetThen(AppConfig.Store.Path, config.DefaultStoreConfig().Path)
		s, err := store.Open(storePath, logger.Named("store"))
		if err != nil {
			logger.Error("cannot open report store", "path", storePath, "error", err)
			return err
		}
		defer s.Close()
		reportStore = s
	}

	// Ctrl-C cancels the scan; the partial report is still rendered.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(AppConfig, reportStore, logger)
	result, scanErr := eng.ScanDirectory(ctx, rootPath, engine.Options{
		EnableAI:       scanOptions.EnableAI || AppConfig.AI.Enabled,
		SeverityFilter: audit.Severity(scanOptions.SeverityFilter),
		Workers:        scanOptions.Workers,
		ExcludeGlobs:   scanOptions.ExcludeGlobs,
	})
	if result == nil {
		logger.Error("scan failed", "error", scanErr)
		return scanErr
	}

	if err := writeReport(result, format); err != nil {
		logger.Error("failed to write report", "error", err)
		return err
	}

	if scanOptions.S3Bucket != "" && scanOptions.OutputFile != "" {
		target := export.S3Target{
			Bucket: scanOptions.S3Bucket,
			Region: scanOptions.S3Region,
			Prefix: scanOptions.S3Prefix,
		}
		if _, err := export.UploadS3(logger, target, scanOptions.OutputFile, result.ScanID); err != nil {
			logger.Error("failed to upload report", "error", err)
			return err
		}
	}

	if scanErr != nil {
		var persistErr *sharederrors.PersistenceError
		if errors.As(scanErr, &persistErr) {
			logger.Error("scan finished but the report could not be persisted", "error", scanErr)
		} else {
			logger.Error("scan did not complete", "error", scanErr)
		}
		return scanErr
	}

	logger.Info("scan command completed successfully", "scan_id", result.ScanID, "risk_band", result.RiskBand)
	return nil
}

func writeReport(result *audit.Report, format export.Format) error {
	if scanOptions.OutputFile == "" {
		return export.Write(os.Stdout, result, format)
	}
	if err := export.WriteFile(scanOptions.OutputFile, result, format); err != nil {
		return err
	}
	fmt.Printf("Report %s written to %s (risk %.1f, %s)\n",
		result.ScanID, scanOptions.OutputFile, result.RiskScore, result.RiskBand)
	return nil
}

func init() {
	ScanCmd.Flags().BoolVar(&scanOptions.EnableAI, "ai", false, "Enable AI analysis of eligible files via the configured endpoint.")
	ScanCmd.Flags().IntVarP(&scanOptions.Workers, "workers", "j", 0, "Number of concurrent scan workers (default: number of CPUs).")
	ScanCmd.Flags().StringSliceVar(&scanOptions.ExcludeGlobs, "exclude", nil, "Directory globs to skip during the walk. Repeatable.")
	ScanCmd.Flags().StringVar(&scanOptions.SeverityFilter, "severity", "", "Drop findings below this severity (CRITICAL, HIGH, MEDIUM, LOW).")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "json", "Report format: json, csv, sarif or html.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputFile, "output", "o", "", "Write the report to a file instead of stdout.")
	ScanCmd.Flags().BoolVar(&scanOptions.NoSave, "no-save", false, "Do not persist the report to the history store.")
	ScanCmd.Flags().StringVar(&scanOptions.S3Bucket, "s3-bucket", "", "Upload the rendered report file to this S3 bucket.")
	ScanCmd.Flags().StringVar(&scanOptions.S3Region, "s3-region", "", "AWS region of the S3 bucket.")
	ScanCmd.Flags().StringVar(&scanOptions.S3Prefix, "s3-prefix", "scanward", "Key prefix for uploaded reports.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
