package analysis

import (
	"context"

	"codegate/internal/githost"
	"codegate/internal/lint"
)

// ReportStore is the persistence boundary the pipeline writes through and
// the query operations read from. Implementations live under
// internal/gateway/repository/report.
type ReportStore interface {
	// Create writes one report and its defect batch as a single logical
	// unit; no partial write may ever become visible.
	Create(ctx context.Context, rep Report, defects []Defect) (Report, error)
	// GetByID returns a report with its defects ordered severity
	// descending, then line number ascending. Missing ids yield
	// ErrReportNotFound.
	GetByID(ctx context.Context, id int64) (Report, error)
	// ListByTask returns a task's reports newest first.
	ListByTask(ctx context.Context, taskID int64) ([]Report, error)
	// ListDefects returns a report's defects in the GetByID order.
	ListDefects(ctx context.Context, reportID int64) ([]Defect, error)
}

// CommitFetcher retrieves changed files for a commit from the hosting API.
type CommitFetcher interface {
	RepoByID(ctx context.Context, id int64, token string) (githost.RepoRef, error)
	CommitFiles(ctx context.Context, owner, repo, ref, token string) ([]githost.CommitFile, error)
}

// Analyzer is the static-analysis engine: a pure function of a virtual
// filename and source text.
type Analyzer interface {
	Analyze(filename, source string) []lint.Finding
}

// CredentialDecrypter unlocks a stored repository credential at point of
// use. The plaintext must never outlive the fetch that needs it.
type CredentialDecrypter interface {
	Decrypt(payload string) (string, error)
}

// SnapshotStore archives analyzed file content per report, best-effort.
type SnapshotStore interface {
	Put(ctx context.Context, reportID int64, path string, content []byte) error
}
