package analysis

import "strings"

// ruleMatcher pairs a predicate over a rule identifier with the category it
// selects. Matchers are evaluated in declaration order, first match wins, so
// classification stays independent of whichever lint engine is plugged in.
type ruleMatcher struct {
	match    func(id string) bool
	category RuleType
}

func containsAny(subs ...string) func(string) bool {
	return func(id string) bool {
		for _, s := range subs {
			if strings.Contains(id, s) {
				return true
			}
		}
		return false
	}
}

var ruleMatchers = []ruleMatcher{
	{containsAny("security", "eval"), RuleSecurity},
	{containsAny("performance", "complexity"), RulePerformance},
	{containsAny("const", "var", "prefer"), RuleBestPractice},
}

// ClassifyRule buckets a rule identifier into exactly one RuleType.
// Unmatched identifiers default to STYLE.
func ClassifyRule(ruleID string) RuleType {
	id := strings.ToLower(strings.TrimSpace(ruleID))
	for _, m := range ruleMatchers {
		if m.match(id) {
			return m.category
		}
	}
	return RuleStyle
}
