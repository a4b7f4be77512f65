package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRule(t *testing.T) {
	tests := []struct {
		ruleID string
		want   RuleType
	}{
		{"security/no-eval", RuleSecurity},
		{"no-eval", RuleSecurity},
		{"complexity/cyclomatic", RulePerformance},
		{"performance/no-delete", RulePerformance},
		{"prefer-const", RuleBestPractice},
		{"no-var", RuleBestPractice},
		{"indent", RuleStyle},
		{"semi", RuleStyle},
		{"", RuleStyle},
	}
	for _, tt := range tests {
		t.Run(tt.ruleID, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRule(tt.ruleID))
		})
	}
}

// Priority is fixed: SECURITY beats PERFORMANCE beats BEST_PRACTICE, and
// STYLE only catches what nothing else matched.
func TestClassifyRulePriorityOrder(t *testing.T) {
	assert.Equal(t, RuleSecurity, ClassifyRule("security/prefer-safe-eval"))
	assert.Equal(t, RulePerformance, ClassifyRule("complexity/prefer-flat"))
	assert.Equal(t, RuleBestPractice, ClassifyRule("prefer-const-indent"))
}

func TestClassifyRuleIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, RuleSecurity, ClassifyRule("Security/No-Eval"))
}
