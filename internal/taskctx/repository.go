// Package taskctx is the narrow read-only view of the external task/project
// system: just enough to resolve a task, check that the acting user may see
// it, and find the repositories linked to its project. The owning CRUD
// service lives elsewhere; this package only reads.
package taskctx

import (
	"context"
	"errors"
)

// Task is the slice of a task the analysis pipeline needs: the commit under
// review and the lines-of-code baseline.
type Task struct {
	ID          int64
	ProjectID   int64
	CommitHash  string
	LinesOfCode int
}

// Repository is where a project's code lives, plus the encrypted access
// credential if one was stored. The plaintext never appears here.
type Repository struct {
	ID             int64
	ProjectID      int64
	GithubRepoID   int64
	EncryptedToken string
}

type Store interface {
	// FindTask resolves a task scoped to the acting user. Returns
	// ErrTaskNotFound when absent and ErrNoAccess when the user is not a
	// member of the task's project.
	FindTask(ctx context.Context, taskID, userID int64) (Task, error)
	// ListRepositories returns the repositories linked to a project.
	ListRepositories(ctx context.Context, projectID int64) ([]Repository, error)
}

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNoAccess     = errors.New("user has no access to the task's project")
)
