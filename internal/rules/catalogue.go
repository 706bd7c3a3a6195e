package rules

import (
	"regexp"

	"github.com/scanward/scanward/internal/audit"
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// securityRules covers the OWASP-flavoured vulnerability classes with their
// CWE mappings. Pattern alternatives for one rule collapse to a single
// finding per line during matching.
var securityRules = []Rule{
	{
		ID:             "SEC-SQLI",
		IssueType:      "SQL Injection",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityHigh,
		CWE:            "CWE-89",
		Description:    "Potential SQL injection vulnerability detected",
		Recommendation: "Use parameterized queries or ORM methods",
		Patterns: compileAll(
			`(?i)execute\s*\(\s*["'].*%.*["']`,
			`(?i)cursor\.execute\s*\(\s*["'].*\+.*["']`,
			`(?i)query\s*=\s*["'].*\+.*["']`,
			`(?i)query\s*=\s*f["'].*\{.*\}`,
			`(?i)(?:SELECT|INSERT|UPDATE|DELETE)[^"']*\{[^}]*\}`,
			`(?i)SELECT.*FROM.*WHERE.*=.*\+`,
			`(?i)(?:INSERT.*VALUES|UPDATE.*SET|DELETE.*WHERE).*\+`,
		),
	},
	{
		ID:             "SEC-XSS",
		IssueType:      "XSS Vulnerability",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-79",
		Description:    "Potential cross-site scripting vulnerability detected",
		Recommendation: "Sanitize user input and use safe rendering methods",
		Patterns: compileAll(
			`innerHTML\s*=\s*.*\+`,
			`document\.write\s*\(\s*.*\+`,
			`dangerouslySetInnerHTML`,
			`v-html\s*=`,
			`__html:\s*\{`,
		),
	},
	{
		ID:             "SEC-SECRETS",
		IssueType:      "Hardcoded Secrets",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityCritical,
		CWE:            "CWE-798",
		Description:    "Hardcoded credential material detected",
		Recommendation: "Use environment variables or secure vaults",
		Patterns: compileAll(
			`(?i)password\s*=\s*["'][^"']{6,}["']`,
			`(?i)pwd\s*=\s*["'][^"']{6,}["']`,
			`(?i)secret\s*=\s*["'][^"']{10,}["']`,
			`(?i)api_key\s*=\s*["'][^"']{10,}["']`,
			`(?i)token\s*=\s*["'][^"']{10,}["']`,
			`(?i)private_key\s*=\s*["'].+["']`,
			`AWS_SECRET_ACCESS_KEY\s*=`,
			`STRIPE_SECRET_KEY\s*=`,
		),
	},
	{
		ID:             "SEC-CMDI",
		IssueType:      "Command Injection",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityHigh,
		CWE:            "CWE-78",
		Description:    "Potential command injection vulnerability detected",
		Recommendation: "Validate input and use safe APIs",
		Patterns: compileAll(
			`os\.system\s*\(\s*.*\+`,
			`subprocess\.(?:call|run|Popen)\s*\(\s*.*\+`,
			`exec\s*\(\s*.*\+`,
			`eval\s*\(\s*.*\+`,
			`shell=True`,
		),
	},
	{
		ID:             "SEC-COMM",
		IssueType:      "Insecure Communication",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-319",
		Description:    "Unencrypted or unverified transport detected",
		Recommendation: "Use HTTPS for all external communications",
		Patterns: compileAll(
			`http://[^"'\s]+`,
			`verify=False`,
			`InsecureSkipVerify:\s*true`,
			`ssl\._create_unverified_context`,
		),
	},
	{
		ID:             "SEC-PATH",
		IssueType:      "Path Traversal",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-22",
		Description:    "Potential path traversal vulnerability detected",
		Recommendation: "Validate and sanitize file paths",
		Patterns: compileAll(
			`open\s*\(\s*.*\+.*["']\.\./`,
			`file\s*=\s*.*\+.*["']\.\./`,
			`filename.*\.\./.*\.\.`,
		),
	},
	{
		ID:             "SEC-CRYPTO",
		IssueType:      "Weak Cryptography",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-327",
		Description:    "Weak or broken cryptographic primitive detected",
		Recommendation: "Use strong cryptographic algorithms (SHA-256+)",
		Patterns: compileAll(
			`hashlib\.md5\(`,
			`hashlib\.sha1\(`,
			`\bmd5\.New\(`,
			`\bsha1\.New\(`,
			`\bDES\(`,
			`\bRC4\(`,
			`random\.random\(\)`,
		),
	},
	{
		ID:             "SEC-LDAP",
		IssueType:      "LDAP Injection",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-90",
		Description:    "Potential LDAP injection vulnerability detected",
		Recommendation: "Use parameterized LDAP queries",
		Patterns: compileAll(
			`(?i)ldap.*search.*\+`,
			`(?i)ldap.*filter.*\+`,
		),
	},
	{
		ID:             "SEC-XXE",
		IssueType:      "XML External Entity",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-611",
		Description:    "XML parsing vulnerable to external entity expansion",
		Recommendation: "Disable external entity processing",
		Patterns: compileAll(
			`XMLParser\s*\(\s*resolve_entities=True`,
			`etree\.fromstring\s*\(`,
		),
	},
	{
		ID:             "SEC-DESER",
		IssueType:      "Insecure Deserialization",
		Category:       audit.CategorySecurity,
		Severity:       audit.SeverityMedium,
		CWE:            "CWE-502",
		Description:    "Deserialization of untrusted data detected",
		Recommendation: "Avoid deserializing untrusted data",
		Patterns: compileAll(
			`pickle\.loads\s*\(`,
			`yaml\.load\s*\(`,
			`eval\s*\(\s*.*\.json`,
		),
	},
}

// qualityRules covers maintainability defects. Metric rules are computed over
// structural units by the matcher; thresholds here are the documented
// defaults.
var qualityRules = []Rule{
	{
		ID:             "QUAL-LONGFUNC",
		IssueType:      "Long Functions",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityMedium,
		Description:    "Function body exceeds the line threshold",
		Recommendation: "Break down into smaller, focused functions",
		Metric:         MetricFunctionLength,
		Threshold:      50,
	},
	{
		ID:             "QUAL-NESTING",
		IssueType:      "Deep Nesting",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityMedium,
		Description:    "Block nesting exceeds the depth threshold",
		Recommendation: "Reduce nesting levels using early returns",
		Metric:         MetricNestingDepth,
		Threshold:      5,
	},
	{
		ID:             "QUAL-PARAMS",
		IssueType:      "Long Parameter Lists",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityMedium,
		Description:    "Function takes more parameters than the threshold",
		Recommendation: "Use parameter objects or reduce parameters",
		Metric:         MetricParameterCount,
		Threshold:      6,
	},
	{
		ID:             "QUAL-TODO",
		IssueType:      "TODO Comments",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityLow,
		Description:    "Unresolved TODO/FIXME marker detected",
		Recommendation: "Complete pending tasks or create tickets",
		Patterns: compileAll(
			`(?://|#).*(?:TODO|FIXME|HACK|XXX)`,
		),
	},
	{
		ID:             "QUAL-EMPTYCATCH",
		IssueType:      "Empty Exception Handler",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityLow,
		Description:    "Exception swallowed without handling",
		Recommendation: "Add proper error handling and logging",
		Patterns: compileAll(
			`except[^:]*:\s*pass`,
			`catch\s*\([^)]*\)\s*\{\s*\}`,
		),
	},
	{
		ID:             "QUAL-BAREEXCEPT",
		IssueType:      "Bare Except",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityLow,
		Description:    "Catch-all exception clause detected",
		Recommendation: "Specify exception types in except clauses",
		Patterns: compileAll(
			`except\s*:\s*$`,
		),
	},
	{
		ID:             "QUAL-MAGIC",
		IssueType:      "Magic Numbers",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityLow,
		Description:    "Unexplained numeric literal in an expression",
		Recommendation: "Extract numeric literals into named constants",
		Patterns: compileAll(
			`(?:[=<>(,+\-*/%]|return)\s*\d{4,}\b`,
		),
	},
	{
		ID:             "QUAL-GLOBALS",
		IssueType:      "Global Variables",
		Category:       audit.CategoryQuality,
		Severity:       audit.SeverityLow,
		Description:    "Mutable global state detected",
		Recommendation: "Use dependency injection or class attributes",
		Patterns: compileAll(
			`^\s*global\s+\w+`,
		),
	},
}
