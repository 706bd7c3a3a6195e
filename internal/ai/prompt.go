package ai

import "fmt"

// maxPromptContent bounds how much file content is embedded in a prompt.
const maxPromptContent = 1500

// buildPrompt renders the security-review prompt for one file. The response
// contract is strict: a JSON object with a findings array; anything else is
// treated as zero findings by the parser.
func buildPrompt(filePath string, content []byte) string {
	code := content
	if len(code) > maxPromptContent {
		code = code[:maxPromptContent]
	}
	return fmt.Sprintf(`Perform a security and maintainability review of this code.

File: %s
Code:
`+"```"+`
%s
`+"```"+`

Look for OWASP Top 10 vulnerabilities (injection, broken authentication,
sensitive data exposure, XXE, broken access control, misconfiguration, XSS,
insecure deserialization, vulnerable components, insufficient logging) and
serious maintainability defects.

Respond with ONLY a JSON object in this exact structure, no prose:
{
  "findings": [
    {
      "line": 10,
      "issue_type": "SQL Injection",
      "category": "Security",
      "severity": "HIGH",
      "cwe_id": "CWE-89",
      "description": "short description",
      "recommendation": "specific fix"
    }
  ]
}

Severity must be one of CRITICAL, HIGH, MEDIUM, LOW. Category must be
Security or Quality. An empty findings array means the code is clean.`, filePath, code)
}
