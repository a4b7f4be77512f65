package lint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingsByRule(findings []Finding) map[string][]Finding {
	out := make(map[string][]Finding)
	for _, f := range findings {
		out[f.RuleID] = append(out[f.RuleID], f)
	}
	return out
}

func TestAnalyzeDetectsCommonViolations(t *testing.T) {
	src := strings.Join([]string{
		`var count = 0;`,
		`debugger;`,
		`console.log("hi");`,
		`if (a == b) { alert("same"); }`,
		`eval(payload);`,
		`try { risky(); } catch (e) {}`,
	}, "\n")

	findings := NewEngine(nil).Analyze("app.js", src)
	byRule := findingsByRule(findings)

	require.Contains(t, byRule, "no-var")
	require.Contains(t, byRule, "no-debugger")
	require.Contains(t, byRule, "no-console")
	require.Contains(t, byRule, "eqeqeq")
	require.Contains(t, byRule, "no-alert")
	require.Contains(t, byRule, "security/no-eval")
	require.Contains(t, byRule, "no-empty-catch")

	assert.Equal(t, SeverityError, byRule["no-debugger"][0].Severity)
	assert.Equal(t, SeverityError, byRule["security/no-eval"][0].Severity)
	assert.Equal(t, SeverityWarning, byRule["no-console"][0].Severity)
	assert.Equal(t, 2, byRule["no-debugger"][0].Line)
	assert.Equal(t, 1, byRule["no-debugger"][0].Column)
}

func TestAnalyzeTypeScriptProfile(t *testing.T) {
	src := strings.Join([]string{
		`// @ts-ignore`,
		`const parse = (raw: any) => JSON.parse(raw);`,
	}, "\n")

	byRule := findingsByRule(NewEngine(nil).Analyze("parse.ts", src))
	assert.Contains(t, byRule, "ban-ts-comment")
	assert.Contains(t, byRule, "no-explicit-any")

	// The same rules stay silent for plain JavaScript.
	byRule = findingsByRule(NewEngine(nil).Analyze("parse.js", src))
	assert.NotContains(t, byRule, "ban-ts-comment")
	assert.NotContains(t, byRule, "no-explicit-any")
}

func TestAnalyzePreferConst(t *testing.T) {
	t.Run("never reassigned", func(t *testing.T) {
		src := "let answer = 42;\nreturn answer;"
		byRule := findingsByRule(NewEngine(nil).Analyze("a.js", src))
		require.Contains(t, byRule, "prefer-const")
		assert.Contains(t, byRule["prefer-const"][0].Message, "answer")
	})

	t.Run("reassigned later", func(t *testing.T) {
		src := "let total = 0;\ntotal += 1;"
		byRule := findingsByRule(NewEngine(nil).Analyze("a.js", src))
		assert.NotContains(t, byRule, "prefer-const")
	})

	t.Run("incremented later", func(t *testing.T) {
		src := "let i = 0;\ni++;"
		byRule := findingsByRule(NewEngine(nil).Analyze("a.js", src))
		assert.NotContains(t, byRule, "prefer-const")
	})
}

func TestAnalyzeNestingDepth(t *testing.T) {
	deep := "if (a) { if (b) { if (c) { if (d) { if (e) { if (f) { if (g) { x(); } } } } } } }"
	byRule := findingsByRule(NewEngine(nil).Analyze("deep.js", deep))
	require.Contains(t, byRule, "complexity/max-depth")
	assert.Equal(t, SeverityWarning, byRule["complexity/max-depth"][0].Severity)

	shallow := "if (a) { if (b) { x(); } }"
	byRule = findingsByRule(NewEngine(nil).Analyze("shallow.js", shallow))
	assert.NotContains(t, byRule, "complexity/max-depth")
}

func TestAnalyzeMaxLineLength(t *testing.T) {
	long := "const s = \"" + strings.Repeat("a", 150) + "\";"
	byRule := findingsByRule(NewEngine(nil).Analyze("long.js", long))
	require.Contains(t, byRule, "max-len")
	// info-level rules surface as warnings
	assert.Equal(t, SeverityWarning, byRule["max-len"][0].Severity)
}

func TestAnalyzeGenericProfile(t *testing.T) {
	// Unknown extensions only get the structural checks.
	src := "var x = 1;\nconsole.log(x);"
	findings := NewEngine(nil).Analyze("notes.txt", src)
	assert.Empty(t, findings)
}

func TestAnalyzeEmptySource(t *testing.T) {
	assert.Empty(t, NewEngine(nil).Analyze("a.js", ""))
	assert.Empty(t, NewEngine(nil).Analyze("a.js", "   \n\t\n"))
}

func TestAnalyzeOrdering(t *testing.T) {
	src := strings.Join([]string{
		`const ok = 1;`,
		`alert("x"); console.log("y");`,
		`debugger;`,
	}, "\n")

	findings := NewEngine(nil).Analyze("a.js", src)
	require.True(t, len(findings) >= 3)
	for i := 1; i < len(findings); i++ {
		prev, cur := findings[i-1], findings[i]
		ordered := prev.Line < cur.Line || (prev.Line == cur.Line && prev.Column <= cur.Column)
		assert.True(t, ordered, "findings must be ordered by line then column")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	src := "var a = 1;\nlet b = 2;\nconsole.log(a, b);"
	first := NewEngine(nil).Analyze("a.js", src)
	second := NewEngine(nil).Analyze("a.js", src)
	assert.Equal(t, first, second)
}
