// Package engine orchestrates a scan: it streams walked files into a bounded
// worker pool, merges pattern and AI findings per file, and aggregates the
// results into a single report. Workers never share mutable state; each file
// result travels to the aggregator as a message.
package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scanward/scanward/internal/ai"
	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/internal/matcher"
	"github.com/scanward/scanward/internal/rules"
	"github.com/scanward/scanward/internal/walker"
	"github.com/scanward/scanward/pkg/shared/config"
	"github.com/scanward/scanward/pkg/shared/errors"
)

// ReportStore is the persistence surface the engine needs. Reports are
// written once and never updated.
type ReportStore interface {
	Save(ctx context.Context, report *audit.Report) error
	Load(ctx context.Context, scanID string) (*audit.Report, error)
	History(ctx context.Context, rootPath string, limit int) ([]audit.ReportSummary, error)
}

// Options tune a single scan. Zero values fall back to configuration.
type Options struct {
	// EnableAI requests AI analysis on eligible files. The endpoint is
	// probed once per scan; an unreachable endpoint silently degrades the
	// scan to pattern-only results.
	EnableAI bool
	// SeverityFilter drops findings below the given severity from the
	// report. Empty keeps everything.
	SeverityFilter audit.Severity
	// Workers bounds scan concurrency. Zero means config, then NumCPU.
	Workers int
	// ExcludeGlobs prune matching directories during the walk, in addition
	// to the built-in exclusions.
	ExcludeGlobs []string
	// SeverityWeights override the scoring weights. Nil means defaults.
	SeverityWeights map[audit.Severity]float64
}

// Engine runs scans and serves stored reports.
type Engine struct {
	cfg      *config.Config
	registry *rules.Registry
	matcher  *matcher.Matcher
	ai       *ai.Client
	store    ReportStore
	logger   hclog.Logger
}

// fileResult is the per-file message a worker hands to the aggregator.
type fileResult struct {
	record   audit.FileRecord
	findings []audit.Finding
}

func New(cfg *config.Config, store ReportStore, logger hclog.Logger) *Engine {
	registry := rules.NewRegistry()
	return &Engine{
		cfg:      cfg,
		registry: registry,
		matcher:  matcher.New(registry),
		ai:       ai.NewClient(cfg, logger.Named("ai")),
		store:    store,
		logger:   logger,
	}
}

// Registry exposes the rule catalogue backing this engine.
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

// ScanDirectory walks rootPath, analyzes every candidate file and returns the
// aggregated report. Cancellation via ctx returns the partial report marked
// incomplete together with a CancellationError; completed reports are
// persisted when a store is configured, and a failed save returns the report
// together with a PersistenceError.
func (e *Engine) ScanDirectory(ctx context.Context, rootPath string, opts Options) (*audit.Report, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("scan root %q is not accessible", rootPath), err)
	}
	if !info.IsDir() {
		return nil, errors.NewConfigError(fmt.Sprintf("scan root %q is not a directory", rootPath), nil)
	}

	report := &audit.Report{
		ScanID:    uuid.NewString(),
		RootPath:  rootPath,
		StartedAt: time.Now().UTC(),
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = e.cfg.Scan.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	useAI := opts.EnableAI && e.ai.Available(ctx)
	if opts.EnableAI && !useAI {
		e.logger.Warn("ai endpoint unavailable, running pattern analysis only")
	}

	w := walker.New(walker.Options{
		ExcludeGlobs:    append(append([]string{}, e.cfg.Scan.ExcludeGlobs...), opts.ExcludeGlobs...),
		MaxBytes:        e.cfg.Scan.MaxFileBytes,
		AIEligibleBytes: e.cfg.AI.MaxContentBytes,
	}, e.logger.Named("walker"))

	e.logger.Info("scan started", "scan_id", report.ScanID, "root", rootPath, "workers", workers, "ai", useAI)

	items := make(chan walker.Item)
	results := make(chan fileResult)

	go func() {
		defer close(items)
		walkErr := w.Walk(rootPath, func(item walker.Item) bool {
			select {
			case <-ctx.Done():
				return false
			case items <- item:
				return true
			}
		})
		if walkErr != nil {
			e.logger.Warn("walk ended early", "root", rootPath, "err", walkErr)
		}
	}()

	// Guard channel bounds in-flight goroutines to the worker count; the
	// closer goroutine waits for stragglers before releasing the aggregator.
	go func() {
		guard := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for item := range items {
			guard <- struct{}{}
			wg.Add(1)
			go func(item walker.Item) {
				defer wg.Done()
				defer func() { <-guard }()
				res := e.scanFile(ctx, item, useAI)
				select {
				case <-ctx.Done():
				case results <- res:
				}
			}(item)
		}
		wg.Wait()
		close(results)
	}()

	for res := range results {
		report.Files = append(report.Files, res.record)
		report.Findings = append(report.Findings, res.findings...)
	}

	canceled := ctx.Err() != nil
	e.finalize(report, opts, canceled)

	if canceled {
		report.Incomplete = true
		e.logger.Warn("scan canceled", "scan_id", report.ScanID, "files_done", len(report.Files))
		return report, errors.NewCancellationError(ctx.Err())
	}

	e.logger.Info("scan finished",
		"scan_id", report.ScanID,
		"files", len(report.Files),
		"findings", len(report.Findings),
		"risk_score", report.RiskScore,
		"risk_band", report.RiskBand,
	)

	if e.store != nil {
		if err := e.store.Save(ctx, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// GetReport loads a persisted report by scan id.
func (e *Engine) GetReport(ctx context.Context, scanID string) (*audit.Report, error) {
	if e.store == nil {
		return nil, errors.NewPersistenceError("load", fmt.Errorf("no report store configured"))
	}
	return e.store.Load(ctx, scanID)
}

// GetHistory lists stored scans for a root path, newest first. A limit of
// zero or less returns all of them.
func (e *Engine) GetHistory(ctx context.Context, rootPath string, limit int) ([]audit.ReportSummary, error) {
	if e.store == nil {
		return nil, errors.NewPersistenceError("history", fmt.Errorf("no report store configured"))
	}
	return e.store.History(ctx, rootPath, limit)
}

// scanFile analyzes one walked file. Pattern matching always runs; AI runs
// only for eligible files when the endpoint answered the probe. AI failures
// degrade to pattern-only output for the file.
func (e *Engine) scanFile(ctx context.Context, item walker.Item, useAI bool) fileResult {
	start := time.Now()
	record := item.Record

	if record.Error != "" {
		record.Duration = time.Since(start)
		return fileResult{record: record}
	}

	findings := e.matcher.Match(record, item.Content)

	if useAI && record.AIEligible {
		aiFindings, err := e.ai.AnalyzeAll(ctx, record, item.Content)
		if err != nil {
			e.logger.Warn("ai analysis failed for file, keeping pattern findings", "file", record.Path, "err", err)
		}
		findings = append(findings, aiFindings...)
	}

	record.Duration = time.Since(start)
	return fileResult{record: record, findings: findings}
}

// finalize orders the collected results deterministically and derives the
// score, metrics, recommendations and compliance verdicts. On cancellation
// the derived sections reflect only what completed, and metrics carry the
// not-computed sentinel.
func (e *Engine) finalize(report *audit.Report, opts Options, canceled bool) {
	audit.SortFiles(report.Files)
	report.Findings = dedupeByID(report.Findings)
	audit.SortFindings(report.Findings)

	if opts.SeverityFilter != "" && opts.SeverityFilter.Valid() {
		report.Findings = filterBySeverity(report.Findings, opts.SeverityFilter)
	}

	metrics := audit.CodeMetrics{
		TotalFiles: len(report.Files),
		BySeverity: make(map[audit.Severity]int),
		ByCategory: make(map[audit.Category]int),
		ByLanguage: make(map[string]int),
		Computed:   !canceled,
	}
	for _, f := range report.Files {
		metrics.TotalLines += f.LineCount
		if f.Language != "" {
			metrics.ByLanguage[f.Language]++
		}
	}
	for _, f := range report.Findings {
		metrics.BySeverity[f.Severity]++
		metrics.ByCategory[f.Category]++
	}
	report.Metrics = metrics

	report.RiskScore = RiskScore(report.Findings, metrics.TotalLines, opts.SeverityWeights)
	report.RiskBand = RiskBand(report.RiskScore)
	report.Recommendations = rankRecommendations(report.Findings)
	report.ComplianceChecks = evaluateCompliance(report.Findings, !canceled)
	report.EndedAt = time.Now().UTC()
}

// dedupeByID collapses findings sharing an id. Ids are stable hashes of
// (path, rule, line), so reruns of the same content cannot multiply findings.
func dedupeByID(findings []audit.Finding) []audit.Finding {
	if len(findings) < 2 {
		return findings
	}
	seen := make(map[string]struct{}, len(findings))
	out := findings[:0]
	for _, f := range findings {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, f)
	}
	return out
}

func filterBySeverity(findings []audit.Finding, floor audit.Severity) []audit.Finding {
	out := findings[:0]
	for _, f := range findings {
		if floor.MoreSevere(f.Severity) {
			continue
		}
		out = append(out, f)
	}
	return out
}
