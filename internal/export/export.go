// Package export renders audit reports into interchange formats: JSON, CSV,
// SARIF and HTML, plus optional upload of the rendered artifact to S3.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scanward/scanward/internal/audit"
)

// Format identifies a supported output format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatSARIF Format = "sarif"
	FormatHTML  Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatSARIF:
		return FormatSARIF, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (json, csv, sarif, html)", s)
}

// Write renders the report in the given format to w.
func Write(w io.Writer, report *audit.Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeCSV(w, report)
	case FormatSARIF:
		return writeSARIF(w, report)
	case FormatHTML:
		return writeHTML(w, report)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// WriteFile renders the report into path, creating or truncating the file.
func WriteFile(path string, report *audit.Report, format Format) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Write(f, report, format)
}

func writeJSON(w io.Writer, report *audit.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
