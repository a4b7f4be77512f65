package taskctx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore reads the tasks, project_members and repositories tables.
// Those tables belong to the external project/task service, so unlike the
// report store this one never creates schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) FindTask(ctx context.Context, taskID, userID int64) (Task, error) {
	var (
		t          Task
		commitHash sql.NullString
		loc        sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, project_id, github_commit_hash, lines_of_code
FROM tasks WHERE id = $1
`, taskID).Scan(&t.ID, &t.ProjectID, &commitHash, &loc)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, err
	}
	t.CommitHash = commitHash.String
	t.LinesOfCode = int(loc.Int64)

	var member bool
	err = s.db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2
)
`, t.ProjectID, userID).Scan(&member)
	if err != nil {
		return Task{}, err
	}
	if !member {
		return Task{}, ErrNoAccess
	}
	return t, nil
}

func (s *PostgresStore) ListRepositories(ctx context.Context, projectID int64) ([]Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, project_id, github_repo_id, COALESCE(access_token, '')
FROM repositories WHERE project_id = $1
ORDER BY connected_at ASC, id ASC
`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.GithubRepoID, &r.EncryptedToken); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
