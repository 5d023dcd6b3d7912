package repository

import (
	"context"
	"strings"
	"sync"

	"snagdef/internal/model"
)

// MemoryUserStore mirrors UserRepository semantics over a mutex-guarded map,
// including the uniqueness guarantee on lower(username). It backs tests and
// local development without a database.
type MemoryUserStore struct {
	mu         sync.RWMutex
	byUsername map[string]model.User
	byID       map[string]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byUsername: map[string]model.User{},
		byID:       map[string]model.User{},
	}
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.byID[id]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User) error {
	key := strings.ToLower(strings.TrimSpace(u.Username))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[key]; exists {
		return model.ErrUserAlreadyExists
	}

	s.byUsername[key] = u
	s.byID[u.ID] = u
	return nil
}

// Delete removes a user so stale-subject paths can be exercised in tests.
func (s *MemoryUserStore) Delete(_ context.Context, username string) {
	key := strings.ToLower(strings.TrimSpace(username))

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, exists := s.byUsername[key]; exists {
		delete(s.byID, u.ID)
		delete(s.byUsername, key)
	}
}

func (s *MemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byID), nil
}

// MemoryReportStore is the in-memory counterpart of ReportRepository.
type MemoryReportStore struct {
	mu      sync.Mutex
	reports []model.ForensicReport
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{}
}

func (s *MemoryReportStore) Create(_ context.Context, report model.ForensicReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	return nil
}

func (s *MemoryReportStore) ListRecent(_ context.Context, limit int) ([]model.ForensicReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}

	out := make([]model.ForensicReport, 0, limit)
	for i := len(s.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.reports[i])
	}
	return out, nil
}
