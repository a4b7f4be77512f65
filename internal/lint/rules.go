package lint

import (
	"fmt"
	"regexp"
	"strings"
)

// lineRule flags every line matching its pattern. Lines are scanned in order,
// so output is deterministic for a given input.
type lineRule struct {
	id      string
	level   level
	pattern *regexp.Regexp
	message string
}

func (r lineRule) apply(lines []string) []Finding {
	var out []Finding
	for i, line := range lines {
		loc := r.pattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		out = append(out, Finding{
			Line:     i + 1,
			Column:   loc[0] + 1,
			RuleID:   r.id,
			Severity: r.level.collapse(),
			Message:  r.message,
		})
	}
	return out
}

// sourceRule inspects the whole file at once, for checks that need more than
// one line of context.
type sourceRule func(lines []string) []Finding

var (
	reDebugger  = regexp.MustCompile(`\bdebugger\b`)
	reEval      = regexp.MustCompile(`\beval\s*\(`)
	reNewFunc   = regexp.MustCompile(`\bnew\s+Function\s*\(`)
	reConsole   = regexp.MustCompile(`\bconsole\.[a-zA-Z]+\s*\(`)
	reAlert     = regexp.MustCompile(`\balert\s*\(`)
	reVarDecl   = regexp.MustCompile(`\bvar\s+[A-Za-z_$]`)
	reLooseEq   = regexp.MustCompile(`[^=!<>]==[^=]|[^!]!=[^=]`)
	reEmptyCat  = regexp.MustCompile(`\bcatch\s*(\([^)]*\))?\s*\{\s*\}`)
	reTSIgnore  = regexp.MustCompile(`@ts-(ignore|nocheck)\b`)
	reAnyType   = regexp.MustCompile(`:\s*any\b`)
	reLetDecl   = regexp.MustCompile(`\blet\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`)
	reComment   = regexp.MustCompile(`^\s*(//|\*|/\*)`)
	// Go's regexp has no backreferences, so the "same closing quote" pattern
	// is spelled out once per quote character.
	reStringLit = regexp.MustCompile(`'(?:\\.|[^\\])*?'|"(?:\\.|[^\\])*?"|` + "`" + `(?:\\.|[^\\])*?` + "`")
)

func commonRules() []lineRule {
	return []lineRule{
		{"no-debugger", levelFatal, reDebugger, "unexpected 'debugger' statement"},
		{"security/no-eval", levelError, reEval, "eval() is a security risk"},
		{"security/no-new-func", levelError, reNewFunc, "the Function constructor is eval in disguise"},
		{"no-console", levelWarning, reConsole, "unexpected console statement"},
		{"no-alert", levelWarning, reAlert, "unexpected alert"},
		{"no-var", levelWarning, reVarDecl, "unexpected var, use let or const instead"},
		{"eqeqeq", levelWarning, reLooseEq, "expected strict comparison (=== or !==)"},
		{"no-empty-catch", levelWarning, reEmptyCat, "empty catch block swallows errors"},
	}
}

func typescriptRules() []lineRule {
	return append(commonRules(),
		lineRule{"ban-ts-comment", levelWarning, reTSIgnore, "do not suppress the type checker"},
		lineRule{"no-explicit-any", levelWarning, reAnyType, "unexpected any, specify a type"},
	)
}

// maxLineLength is the longest line the generic style check accepts.
const maxLineLength = 120

func maxLineRule(lines []string) []Finding {
	var out []Finding
	for i, line := range lines {
		if len(line) > maxLineLength {
			out = append(out, Finding{
				Line:     i + 1,
				Column:   maxLineLength + 1,
				RuleID:   "max-len",
				Severity: levelInfo.collapse(),
				Message:  fmt.Sprintf("line exceeds %d characters", maxLineLength),
			})
		}
	}
	return out
}

// maxNestingDepth is how deep brace nesting may go before the complexity
// check fires, once per file at the first offending line.
const maxNestingDepth = 6

func nestingRule(lines []string) []Finding {
	depth := 0
	for i, line := range lines {
		stripped := reStringLit.ReplaceAllString(line, `""`)
		for _, ch := range stripped {
			switch ch {
			case '{':
				depth++
				if depth > maxNestingDepth {
					return []Finding{{
						Line:     i + 1,
						Column:   1,
						RuleID:   "complexity/max-depth",
						Severity: levelWarning.collapse(),
						Message:  fmt.Sprintf("blocks nested deeper than %d levels", maxNestingDepth),
					}}
				}
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return nil
}

// preferConstRule flags let-declarations whose variable is never reassigned
// later in the file. A heuristic, so it stays a warning.
func preferConstRule(lines []string) []Finding {
	type decl struct {
		line, col int
		name      string
	}
	var decls []decl
	for i, line := range lines {
		if reComment.MatchString(line) {
			continue
		}
		for _, m := range reLetDecl.FindAllStringSubmatchIndex(line, -1) {
			decls = append(decls, decl{
				line: i + 1,
				col:  m[0] + 1,
				name: line[m[2]:m[3]],
			})
		}
	}

	var out []Finding
	for _, d := range decls {
		if reassigned(lines, d.line, d.name) {
			continue
		}
		out = append(out, Finding{
			Line:     d.line,
			Column:   d.col,
			RuleID:   "prefer-const",
			Severity: levelWarning.collapse(),
			Message:  fmt.Sprintf("'%s' is never reassigned, use const instead", d.name),
		})
	}
	return out
}

func reassigned(lines []string, afterLine int, name string) bool {
	assign := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*([-+*/]?=[^=]|\+\+|--)`)
	for i := afterLine; i < len(lines); i++ {
		if assign.MatchString(lines[i]) {
			return true
		}
	}
	return false
}

// profile bundles the rules applied to one language family.
type profile struct {
	name   string
	rules  []lineRule
	checks []sourceRule
}

func javascriptProfile() profile {
	return profile{
		name:   "javascript",
		rules:  commonRules(),
		checks: []sourceRule{preferConstRule, nestingRule, maxLineRule},
	}
}

func typescriptProfile() profile {
	return profile{
		name:   "typescript",
		rules:  typescriptRules(),
		checks: []sourceRule{preferConstRule, nestingRule, maxLineRule},
	}
}

func genericProfile() profile {
	return profile{
		name:   "generic",
		rules:  nil,
		checks: []sourceRule{nestingRule, maxLineRule},
	}
}

func profileForFilename(filename string) profile {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".ts"), strings.HasSuffix(name, ".tsx"):
		return typescriptProfile()
	case strings.HasSuffix(name, ".js"), strings.HasSuffix(name, ".jsx"),
		strings.HasSuffix(name, ".mjs"), strings.HasSuffix(name, ".cjs"),
		strings.HasSuffix(name, ".vue"):
		return javascriptProfile()
	default:
		return genericProfile()
	}
}
