package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/pkg/shared/config"
	sharederrors "github.com/scanward/scanward/pkg/shared/errors"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(&config.Config{}, nil, hclog.NewNullLogger())
}

func writeFixture(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanDirectoryFindsInjection(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "app.py", `query = f"SELECT * FROM users WHERE id = {user_id}"`+"\n")
	writeFixture(t, root, "clean.py", "def ok():\n    return 1\n")

	report, err := testEngine(t).ScanDirectory(context.Background(), root, Options{})
	require.NoError(t, err)

	require.NotEmpty(t, report.ScanID)
	require.Equal(t, root, report.RootPath)
	require.False(t, report.Incomplete)
	require.Len(t, report.Findings, 1)

	f := report.Findings[0]
	require.Equal(t, "SEC-SQLI", f.RuleID)
	require.Equal(t, audit.SeverityHigh, f.Severity)
	require.Equal(t, audit.CategorySecurity, f.Category)

	require.True(t, report.Metrics.Computed)
	require.Equal(t, 2, report.Metrics.TotalFiles)
	require.Equal(t, 1, report.Metrics.BySeverity[audit.SeverityHigh])
	require.Equal(t, 2, report.Metrics.ByLanguage["python"])
	require.NotEmpty(t, report.Recommendations)
}

func TestScanDirectoryDeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.py", `password = "hunter2secret"`+"\n")
	writeFixture(t, root, "b/c.py", `os.system("rm " + path)`+"\n")
	writeFixture(t, root, "b/d.py", "# TODO: finish this\n")

	eng := testEngine(t)
	first, err := eng.ScanDirectory(context.Background(), root, Options{Workers: 4})
	require.NoError(t, err)
	second, err := eng.ScanDirectory(context.Background(), root, Options{Workers: 1})
	require.NoError(t, err)

	require.NotEqual(t, first.ScanID, second.ScanID)
	require.Equal(t, first.RiskScore, second.RiskScore)
	require.Equal(t, len(first.Findings), len(second.Findings))
	for i := range first.Findings {
		require.Equal(t, first.Findings[i].ID, second.Findings[i].ID)
	}
}

func TestScanDirectoryBadRootFailsFast(t *testing.T) {
	_, err := testEngine(t).ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	var cfgErr *sharederrors.ConfigError
	require.True(t, errors.As(err, &cfgErr), "want ConfigError, got %v", err)
}

func TestScanDirectoryFileRootFailsFast(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "file.py", "x = 1\n")

	_, err := testEngine(t).ScanDirectory(context.Background(), filepath.Join(root, "file.py"), Options{})
	var cfgErr *sharederrors.ConfigError
	require.True(t, errors.As(err, &cfgErr), "want ConfigError, got %v", err)
}

func TestScanDirectoryCancellationReturnsPartialReport(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "app.py", "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := testEngine(t).ScanDirectory(ctx, root, Options{})
	require.NotNil(t, report)
	require.True(t, report.Incomplete)
	require.False(t, report.Metrics.Computed)

	var cancelErr *sharederrors.CancellationError
	require.True(t, errors.As(err, &cancelErr), "want CancellationError, got %v", err)

	for _, check := range report.ComplianceChecks {
		require.Equal(t, audit.ComplianceStatusNotEvaluated, check.Status)
	}
}

func TestScanDirectorySeverityFilter(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "app.py", `password = "hunter2secret"`+"\n# TODO: rotate it\n")

	report, err := testEngine(t).ScanDirectory(context.Background(), root, Options{
		SeverityFilter: audit.SeverityHigh,
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Findings)
	for _, f := range report.Findings {
		require.Contains(t, []audit.Severity{audit.SeverityCritical, audit.SeverityHigh}, f.Severity)
	}
}

func TestScanDirectoryExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "src/app.py", `password = "hunter2secret"`+"\n")
	writeFixture(t, root, "gen/out.py", `password = "hunter2secret"`+"\n")

	report, err := testEngine(t).ScanDirectory(context.Background(), root, Options{
		ExcludeGlobs: []string{"gen"},
	})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	for _, f := range report.Findings {
		require.NotContains(t, f.FilePath, "gen")
	}
}

func TestScanDirectoryEmptyTree(t *testing.T) {
	report, err := testEngine(t).ScanDirectory(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)
	require.Empty(t, report.Findings)
	require.Zero(t, report.RiskScore)
	require.Equal(t, RiskBandStable, report.RiskBand)
}

func TestDedupeByID(t *testing.T) {
	findings := []audit.Finding{
		{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}, {ID: "b"},
	}
	got := dedupeByID(findings)
	require.Len(t, got, 3)
}
