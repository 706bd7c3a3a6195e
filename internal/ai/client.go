// Package ai sends eligible file content to a local or remote model endpoint
// and parses structured findings out of the response. The endpoint shape
// follows the Ollama API: GET /api/tags as availability probe, POST
// /api/generate for completions. AI unavailability is always a soft failure:
// it degrades the scan to pattern-only results, never aborts it.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/tidwall/gjson"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/pkg/shared/config"
	"github.com/scanward/scanward/pkg/shared/errors"
	"github.com/scanward/scanward/pkg/shared/httpclient"
)

// Client talks to the model endpoint with caching and retries.
type Client struct {
	cfg    config.AI
	http   *resty.Client
	cache  *Cache
	logger hclog.Logger
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

func NewClient(cfg *config.Config, logger hclog.Logger) *Client {
	aiCfg := cfg.AI
	defaults := config.DefaultAIConfig()
	aiCfg.BaseURL = config.SetThen(aiCfg.BaseURL, defaults.BaseURL)
	aiCfg.Timeout = config.SetThen(aiCfg.Timeout, defaults.Timeout)
	aiCfg.CacheTTL = config.SetThen(aiCfg.CacheTTL, defaults.CacheTTL)
	aiCfg.MaxContentBytes = config.SetThen(aiCfg.MaxContentBytes, defaults.MaxContentBytes)
	if len(aiCfg.Models) == 0 {
		aiCfg.Models = defaults.Models
	}

	client := httpclient.InitializeRestyClient(logger, cfg)
	client.SetBaseURL(aiCfg.BaseURL)
	client.SetTimeout(aiCfg.Timeout)

	return &Client{
		cfg:    aiCfg,
		http:   client,
		cache:  NewCache(aiCfg.CacheTTL),
		logger: logger,
	}
}

// Models returns the configured model identifiers.
func (c *Client) Models() []string {
	return c.cfg.Models
}

// Available probes the endpoint. Used once per scan to decide whether AI
// analysis is attempted at all.
func (c *Client) Available(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		c.logger.Debug("ai endpoint probe failed", "base_url", c.cfg.BaseURL, "err", err)
		return false
	}
	return resp.StatusCode() == 200
}

// Analyze submits the file content to one model and returns parsed findings.
// Identical content+model within the cache TTL results in exactly one
// outbound request. Endpoint failures return an AIUnavailableError; malformed
// responses return zero findings and no error.
func (c *Client) Analyze(ctx context.Context, record audit.FileRecord, content []byte, model string) ([]audit.Finding, error) {
	key := Key(content, model)
	lock := c.cache.KeyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if findings, ok := c.cache.Get(key); ok {
		c.logger.Debug("ai cache hit", "file", record.Path, "model", model)
		return findings, nil
	}

	body := generateRequest{
		Model:  model,
		Prompt: buildPrompt(record.Path, content),
		Stream: false,
		Options: generateOptions{
			Temperature: 0.1,
			TopP:        0.9,
			NumPredict:  2000,
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/api/generate")
	if err != nil {
		return nil, errors.NewAIUnavailableError(model, err)
	}
	if resp.StatusCode() != 200 {
		return nil, errors.NewAIUnavailableError(model, fmt.Errorf("endpoint returned status %d", resp.StatusCode()))
	}

	text := gjson.GetBytes(resp.Body(), "response").String()
	findings := c.parseFindings(record, model, text)

	c.cache.Put(key, findings)
	return findings, nil
}

// AnalyzeAll runs every configured model against the file and concatenates
// their outputs, then deduplicates by (lineNumber, issueType) since AI
// findings lack a stable rule id. A model failure is logged and skipped; the
// error is returned only when every model failed.
func (c *Client) AnalyzeAll(ctx context.Context, record audit.FileRecord, content []byte) ([]audit.Finding, error) {
	var merged []audit.Finding
	var lastErr error
	failures := 0

	for _, model := range c.cfg.Models {
		findings, err := c.Analyze(ctx, record, content, model)
		if err != nil {
			c.logger.Warn("ai analysis unavailable, degrading to pattern-only", "file", record.Path, "model", model, "err", err)
			failures++
			lastErr = err
			continue
		}
		merged = append(merged, findings...)
	}

	merged = dedupeAIFindings(merged)
	if failures == len(c.cfg.Models) && failures > 0 {
		return merged, lastErr
	}
	return merged, nil
}

// parseFindings extracts the findings array from model output. The model is
// asked for pure JSON but often wraps it in prose, so the first JSON object
// in the text is taken. Any deviation from the schema yields zero findings.
func (c *Client) parseFindings(record audit.FileRecord, model string, text string) []audit.Finding {
	raw := extractJSONObject(text)
	if raw == "" {
		c.logger.Warn("ai response held no JSON object, treating as zero findings", "file", record.Path, "model", model)
		return nil
	}

	parsed := gjson.Get(raw, "findings")
	if !parsed.IsArray() {
		c.logger.Warn("ai response missing findings array, treating as zero findings", "file", record.Path, "model", model)
		return nil
	}

	var findings []audit.Finding
	parsed.ForEach(func(_, value gjson.Result) bool {
		line := int(value.Get("line").Int())
		issueType := strings.TrimSpace(value.Get("issue_type").String())
		severity := audit.Severity(strings.ToUpper(value.Get("severity").String()))
		if line < 1 || issueType == "" || !severity.Valid() {
			c.logger.Debug("skipping malformed ai finding", "file", record.Path, "model", model)
			return true
		}
		category := audit.CategorySecurity
		if strings.EqualFold(value.Get("category").String(), string(audit.CategoryQuality)) {
			category = audit.CategoryQuality
		}
		ruleID := "AI-" + strings.ToUpper(strings.ReplaceAll(issueType, " ", "-"))
		findings = append(findings, audit.Finding{
			ID:             audit.FindingID(record.Path, ruleID, line),
			FilePath:       record.Path,
			LineNumber:     line,
			CodeSnippet:    "",
			RuleID:         ruleID,
			Category:       category,
			IssueType:      issueType,
			Severity:       severity,
			CWE:            value.Get("cwe_id").String(),
			Description:    value.Get("description").String(),
			Recommendation: value.Get("recommendation").String(),
			Source:         audit.SourceAI,
		})
		return true
	})
	return findings
}

// dedupeAIFindings collapses findings that share (lineNumber, issueType):
// different models may legitimately flag the same issue.
func dedupeAIFindings(findings []audit.Finding) []audit.Finding {
	if len(findings) < 2 {
		return findings
	}
	seen := make(map[string]struct{}, len(findings))
	out := findings[:0]
	for _, f := range findings {
		key := fmt.Sprintf("%d|%s", f.LineNumber, f.IssueType)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// extractJSONObject returns the first balanced JSON object in text.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
