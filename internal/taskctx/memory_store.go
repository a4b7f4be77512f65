package taskctx

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory task context, used by tests and
// DB-less boots. Seed it with AddTask/AddMember/AddRepository.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[int64]Task
	members map[int64]map[int64]struct{}
	repos   map[int64][]Repository
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:   make(map[int64]Task),
		members: make(map[int64]map[int64]struct{}),
		repos:   make(map[int64][]Repository),
	}
}

func (s *MemoryStore) AddTask(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

func (s *MemoryStore) AddMember(projectID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[projectID] == nil {
		s.members[projectID] = make(map[int64]struct{})
	}
	s.members[projectID][userID] = struct{}{}
}

func (s *MemoryStore) AddRepository(r Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[r.ProjectID] = append(s.repos[r.ProjectID], r)
}

func (s *MemoryStore) FindTask(_ context.Context, taskID, userID int64) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	if _, ok := s.members[t.ProjectID][userID]; !ok {
		return Task{}, ErrNoAccess
	}
	return t, nil
}

func (s *MemoryStore) ListRepositories(_ context.Context, projectID int64) ([]Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Repository(nil), s.repos[projectID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
