package analysis

import (
	"log/slog"
	"math"
)

// scoreConstant is the K in penalty = (K / S) * Σ weight(severity).
const scoreConstant = 10.0

// fallbackLOC substitutes a missing or non-positive lines-of-code baseline
// before any division.
const fallbackLOC = 100

// Weight returns the penalty points one defect of the given severity carries.
func Weight(sev Severity) int {
	switch sev {
	case SeverityError:
		return 10
	case SeverityWarning:
		return 5
	default:
		return 0
	}
}

// Score computes the 0..100 quality score for a defect list against a
// lines-of-code baseline. Pure apart from a warning log on a bad baseline.
//
//	score = max(0, 100 - (K / S) * Σ weight(severity_i))
//
// rounded to two decimal places. An empty defect list scores exactly 100 and
// skips the division entirely.
func Score(defects []Defect, linesOfCode int) float64 {
	if linesOfCode <= 0 {
		slog.Warn("lines-of-code baseline is not positive, substituting default",
			"lines_of_code", linesOfCode, "default", fallbackLOC)
		linesOfCode = fallbackLOC
	}

	if len(defects) == 0 {
		return 100
	}

	sum := 0
	for _, d := range defects {
		sum += Weight(d.Severity)
	}

	penalty := (scoreConstant / float64(linesOfCode)) * float64(sum)
	score := math.Max(0, 100-penalty)
	return math.Round(score*100) / 100
}

// Decide maps a quality score to the gate decision. Thresholds are closed on
// the lower bound: exactly 80 approves, exactly 60 stays pending.
func Decide(score float64) Decision {
	switch {
	case score >= 80:
		return DecisionApproved
	case score >= 60:
		return DecisionPending
	default:
		return DecisionRejected
	}
}
