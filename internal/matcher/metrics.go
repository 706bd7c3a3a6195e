package matcher

import (
	"regexp"
	"strings"
)

// unit is one structural unit (function or method) approximated from text.
type unit struct {
	startLine int // 1-based line of the function header
	length    int // lines spanned by the unit body
	params    int // parameters declared in the header
}

var (
	pythonFunc = regexp.MustCompile(`^(\s*)def\s+\w+\s*\(`)
	goFunc     = regexp.MustCompile(`^func\b`)
	jsFunc     = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\b|^\s*[\w$]+\s*[:=]\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>)`)
	cFunc      = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|virtual|override|async|unsafe)\s+)*[\w<>\[\],\s\*&:~]+\s[\w:~]+\s*\([^;]*\)\s*\{?\s*$`)
)

// extractUnits approximates the functions in a file. Python extents are
// computed from indentation; brace languages from brace balance. The
// heuristics do not need to be exact: metric rules only compare unit size
// against a threshold.
func extractUnits(language string, lines []string) []unit {
	if language == "python" {
		return pythonUnits(lines)
	}
	return braceUnits(language, lines)
}

func pythonUnits(lines []string) []unit {
	var units []unit
	for i := 0; i < len(lines); i++ {
		m := pythonFunc.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		indent := len(m[1])
		end := i
		for j := i + 1; j < len(lines); j++ {
			trimmed := strings.TrimSpace(lines[j])
			if trimmed == "" {
				continue
			}
			if indentOf(lines[j]) <= indent {
				break
			}
			end = j
		}
		units = append(units, unit{
			startLine: i + 1,
			length:    end - i,
			params:    countParams(headerParams(lines, i)),
		})
	}
	return units
}

func braceUnits(language string, lines []string) []unit {
	start := funcStart(language)
	var units []unit
	for i := 0; i < len(lines); i++ {
		if !start.MatchString(lines[i]) {
			continue
		}
		// Find the opening brace, then scan to balance.
		depth := 0
		opened := false
		end := i
	scan:
		for j := i; j < len(lines) && j < i+2000; j++ {
			for _, ch := range lines[j] {
				switch ch {
				case '{':
					depth++
					opened = true
				case '}':
					depth--
					if opened && depth == 0 {
						end = j
						break scan
					}
				}
			}
			if opened {
				end = j
			}
			// Header without a brace within a few lines is not a function.
			if !opened && j > i+3 {
				break
			}
		}
		if !opened {
			continue
		}
		units = append(units, unit{
			startLine: i + 1,
			length:    end - i,
			params:    countParams(headerParams(lines, i)),
		})
	}
	return units
}

func funcStart(language string) *regexp.Regexp {
	switch language {
	case "go":
		return goFunc
	case "javascript", "typescript":
		return jsFunc
	default:
		return cFunc
	}
}

// headerParams extracts the text between the header's parentheses, reading a
// few continuation lines when the parameter list spans lines.
func headerParams(lines []string, start int) string {
	var sb strings.Builder
	depth := 0
	started := false
	for i := start; i < len(lines) && i < start+5; i++ {
		for _, ch := range lines[i] {
			switch {
			case ch == '(':
				depth++
				if depth == 1 {
					started = true
					continue
				}
			case ch == ')':
				depth--
				if started && depth == 0 {
					return sb.String()
				}
			}
			if started && depth >= 1 {
				sb.WriteRune(ch)
			}
		}
	}
	return sb.String()
}

func countParams(params string) int {
	params = strings.TrimSpace(params)
	if params == "" || params == "void" {
		return 0
	}
	count := 1
	depth := 0
	for _, ch := range params {
		switch ch {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}

// nestingViolations returns the lines where block nesting first exceeds the
// threshold. Depth is tracked by braces for brace languages and by
// indentation steps of four for python.
func nestingViolations(language string, lines []string, threshold int) []int {
	var out []int
	if language == "python" {
		over := false
		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			depth := indentOf(line) / 4
			if depth > threshold && !over {
				out = append(out, i+1)
				over = true
			} else if depth <= threshold {
				over = false
			}
		}
		return out
	}

	depth := 0
	over := false
	for i, line := range lines {
		for _, ch := range line {
			switch ch {
			case '{':
				depth++
				if depth > threshold && !over {
					out = append(out, i+1)
					over = true
				}
			case '}':
				depth--
				if depth <= threshold {
					over = false
				}
			}
		}
	}
	return out
}

func indentOf(line string) int {
	n := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
