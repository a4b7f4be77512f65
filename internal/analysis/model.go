package analysis

import "time"

// Decision is the three-valued gate outcome derived from the quality score.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionPending  Decision = "PENDING"
	DecisionRejected Decision = "REJECTED"
)

// Severity is the collapsed defect severity. Engine-native levels are mapped
// into these two buckets before anything downstream sees them.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// RuleType is the classification bucket a finding's rule identifier maps to.
type RuleType string

const (
	RuleSecurity     RuleType = "SECURITY"
	RulePerformance  RuleType = "PERFORMANCE"
	RuleBestPractice RuleType = "BEST_PRACTICE"
	RuleStyle        RuleType = "STYLE"
)

// Report is one immutable analysis run outcome for a task/commit pair.
// Created once in the persisting step, never updated.
type Report struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	CommitHash   string    `json:"commit_hash"`
	QualityScore float64   `json:"quality_score"`
	Decision     Decision  `json:"decision"`
	CreatedAt    time.Time `json:"created_at"`
	Defects      []Defect  `json:"defects,omitempty"`
}

// Defect is a finding persisted against a report, enriched with its
// classification and the penalty weight in force when it was written.
type Defect struct {
	ID            int64    `json:"id"`
	ReportID      int64    `json:"report_id"`
	RuleType      RuleType `json:"rule_type"`
	Message       string   `json:"message"`
	FilePath      string   `json:"file_path"`
	LineNumber    int      `json:"line_number"`
	Severity      Severity `json:"severity"`
	PenaltyPoints int      `json:"penalty_points"`
}
