package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/scanward/scanward/internal/audit"
)

//go:embed templates/report.html
var templatesFS embed.FS

// add adds two integers and returns the result.
// helper function for html template
func add(a, b int) int {
	return a + b
}

// severityClass maps a severity to the CSS class used in the report layout.
// helper function for html template
func severityClass(severity audit.Severity) string {
	return "sev-" + strings.ToLower(string(severity))
}

// formatDateTime formats a time.Time object for the report header.
// helper function for html template
func formatDateTime(t time.Time) string {
	return t.Format("2 Jan 2006 15:04:05 MST")
}

// formatScore renders the risk score with one decimal place.
// helper function for html template
func formatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

func newReportTemplate() (*template.Template, error) {
	return template.New("report.html").
		Funcs(template.FuncMap{
			"add":            add,
			"severityClass":  severityClass,
			"formatDateTime": formatDateTime,
			"formatScore":    formatScore,
		}).
		ParseFS(templatesFS, "templates/report.html")
}

func writeHTML(w io.Writer, report *audit.Report) error {
	tmpl, err := newReportTemplate()
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}
	data := struct {
		Report *audit.Report
	}{
		Report: report,
	}
	return tmpl.Execute(w, data)
}
