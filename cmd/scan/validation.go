package scan

import (
	"fmt"
	"strings"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/pkg/shared/files"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("invalid argument(s) received, exactly one PATH argument is required")
	}

	if err := files.ValidateDir(args[0]); err != nil {
		return fmt.Errorf("invalid scan path %q: %w", args[0], err)
	}

	if options.SeverityFilter != "" {
		options.SeverityFilter = strings.ToUpper(options.SeverityFilter)
		if !audit.Severity(options.SeverityFilter).Valid() {
			return fmt.Errorf("unknown severity %q (CRITICAL, HIGH, MEDIUM, LOW)", options.SeverityFilter)
		}
	}

	if options.Workers < 0 {
		return fmt.Errorf("the 'workers' flag must not be negative")
	}

	if options.S3Bucket != "" {
		if options.OutputFile == "" {
			return fmt.Errorf("the 's3-bucket' flag requires 'output' so there is a file to upload")
		}
		if options.S3Region == "" {
			return fmt.Errorf("the 's3-bucket' flag requires 's3-region'")
		}
	}

	return nil
}
