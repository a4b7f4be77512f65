package report

import (
	"context"

	"codegate/internal/analysis"
)

// Store is the persistence boundary for analysis reports and their defects.
// Both entities are append-only: no update operation exists for either.
type Store interface {
	// Create writes one report and its defect batch as a single logical
	// unit. No partial write may ever become visible. Returns the stored
	// report with identities and timestamps assigned.
	Create(ctx context.Context, rep analysis.Report, defects []analysis.Defect) (analysis.Report, error)
	// GetByID returns a report together with its defects ordered by
	// severity descending (ERROR first), then line number ascending.
	GetByID(ctx context.Context, id int64) (analysis.Report, error)
	// ListByTask returns a task's reports newest first, without defects.
	ListByTask(ctx context.Context, taskID int64) ([]analysis.Report, error)
	// ListDefects returns a report's defects in the GetByID order.
	ListDefects(ctx context.Context, reportID int64) ([]analysis.Defect, error)
}

// ErrNotFound aliases the pipeline-level sentinel so callers on either side
// of the boundary match the same error value.
var ErrNotFound = analysis.ErrReportNotFound
