package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"codegate/internal/analysis"
)

// MemoryStore keeps reports in process memory. Used by tests and for DB-less
// boots.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	reports map[int64]analysis.Report
	defects map[int64][]analysis.Defect
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		reports: make(map[int64]analysis.Report),
		defects: make(map[int64][]analysis.Defect),
	}
}

func (s *MemoryStore) Create(_ context.Context, rep analysis.Report, defects []analysis.Defect) (analysis.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep.ID = s.nextID
	s.nextID++
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now()
	}

	stored := make([]analysis.Defect, len(defects))
	copy(stored, defects)
	for i := range stored {
		stored[i].ID = s.nextID
		s.nextID++
		stored[i].ReportID = rep.ID
	}
	sortDefects(stored)

	s.defects[rep.ID] = stored
	rep.Defects = nil
	s.reports[rep.ID] = rep

	rep.Defects = stored
	return rep, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (analysis.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[id]
	if !ok {
		return analysis.Report{}, ErrNotFound
	}
	rep.Defects = append([]analysis.Defect(nil), s.defects[id]...)
	return rep, nil
}

func (s *MemoryStore) ListByTask(_ context.Context, taskID int64) ([]analysis.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []analysis.Report
	for _, rep := range s.reports {
		if rep.TaskID == taskID {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListDefects(_ context.Context, reportID int64) ([]analysis.Defect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.reports[reportID]; !ok {
		return nil, ErrNotFound
	}
	return append([]analysis.Defect(nil), s.defects[reportID]...), nil
}

// sortDefects orders severity descending (ERROR first) then line ascending,
// matching the Postgres query.
func sortDefects(defects []analysis.Defect) {
	sort.SliceStable(defects, func(i, j int) bool {
		wi, wj := analysis.Weight(defects[i].Severity), analysis.Weight(defects[j].Severity)
		if wi != wj {
			return wi > wj
		}
		return defects[i].LineNumber < defects[j].LineNumber
	})
}
