// Package snapshot archives the source files a report was computed from, so
// a reviewer can see exactly what was analyzed. Archiving is best-effort:
// the pipeline never fails because a snapshot could not be written.
package snapshot

import (
	"context"
	"errors"
)

// Store persists analyzed file content keyed by report id and file path.
type Store interface {
	Put(ctx context.Context, reportID int64, path string, content []byte) error
	Get(ctx context.Context, reportID int64, path string) ([]byte, error)
	List(ctx context.Context, reportID int64) ([]string, error)
}

var ErrNotFound = errors.New("snapshot not found")
