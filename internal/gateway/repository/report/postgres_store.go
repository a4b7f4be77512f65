package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"codegate/internal/analysis"
)

// reportCacheSize bounds the by-id cache. Reports are immutable once written,
// so cached entries never go stale.
const reportCacheSize = 1024

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[int64, analysis.Report]
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	cache, err := lru.New[int64, analysis.Report](reportCacheSize)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, cache: cache}, nil
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS analysis_reports (
    id BIGSERIAL PRIMARY KEY,
    task_id BIGINT NOT NULL,
    commit_hash TEXT NOT NULL,
    quality_score DOUBLE PRECISION NOT NULL,
    decision TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reports_task_id ON analysis_reports(task_id);
CREATE TABLE IF NOT EXISTS defects (
    id BIGSERIAL PRIMARY KEY,
    report_id BIGINT NOT NULL REFERENCES analysis_reports(id),
    rule_type TEXT NOT NULL,
    message TEXT NOT NULL,
    file_path TEXT NOT NULL,
    line_number INT NOT NULL,
    severity TEXT NOT NULL,
    penalty_points INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_defects_report_id ON defects(report_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Create(ctx context.Context, rep analysis.Report, defects []analysis.Defect) (analysis.Report, error) {
	if err := s.ensureSchema(); err != nil {
		return analysis.Report{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return analysis.Report{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
INSERT INTO analysis_reports (task_id, commit_hash, quality_score, decision)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`, rep.TaskID, rep.CommitHash, rep.QualityScore, rep.Decision).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return analysis.Report{}, err
	}

	for i := range defects {
		d := &defects[i]
		d.ReportID = rep.ID
		err = tx.QueryRowContext(ctx, `
INSERT INTO defects (report_id, rule_type, message, file_path, line_number, severity, penalty_points)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, d.ReportID, d.RuleType, d.Message, d.FilePath, d.LineNumber, d.Severity, d.PenaltyPoints).Scan(&d.ID)
		if err != nil {
			return analysis.Report{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return analysis.Report{}, err
	}
	rep.Defects = defects
	return rep, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (analysis.Report, error) {
	if err := s.ensureSchema(); err != nil {
		return analysis.Report{}, err
	}
	if cached, ok := s.cache.Get(id); ok {
		return cached, nil
	}

	var rep analysis.Report
	err := s.db.QueryRowContext(ctx, `
SELECT id, task_id, commit_hash, quality_score, decision, created_at
FROM analysis_reports WHERE id = $1
`, id).Scan(&rep.ID, &rep.TaskID, &rep.CommitHash, &rep.QualityScore, &rep.Decision, &rep.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Report{}, ErrNotFound
	}
	if err != nil {
		return analysis.Report{}, err
	}

	rep.Defects, err = s.ListDefects(ctx, id)
	if err != nil {
		return analysis.Report{}, err
	}

	s.cache.Add(id, rep)
	return rep, nil
}

func (s *PostgresStore) ListByTask(ctx context.Context, taskID int64) ([]analysis.Report, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, task_id, commit_hash, quality_score, decision, created_at
FROM analysis_reports WHERE task_id = $1
ORDER BY created_at DESC, id DESC
`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analysis.Report
	for rows.Next() {
		var rep analysis.Report
		if err := rows.Scan(&rep.ID, &rep.TaskID, &rep.CommitHash, &rep.QualityScore, &rep.Decision, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListDefects(ctx context.Context, reportID int64) ([]analysis.Defect, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	// Severity is stored as text, so rank ERROR above WARNING explicitly.
	rows, err := s.db.QueryContext(ctx, `
SELECT id, report_id, rule_type, message, file_path, line_number, severity, penalty_points
FROM defects WHERE report_id = $1
ORDER BY CASE severity WHEN 'ERROR' THEN 1 ELSE 0 END DESC, line_number ASC, id ASC
`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analysis.Defect
	for rows.Next() {
		var d analysis.Defect
		if err := rows.Scan(&d.ID, &d.ReportID, &d.RuleType, &d.Message, &d.FilePath, &d.LineNumber, &d.Severity, &d.PenaltyPoints); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
