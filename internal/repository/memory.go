package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/lead-service/internal/domain"
)

// MemoryStore is an in-process implementation of LeadRepository and
// LeadHistoryRepository with the same compare-and-swap semantics as the
// Postgres repositories. It backs tests and DSN-less development runs.
type MemoryStore struct {
	mu      sync.RWMutex
	leads   map[string]*domain.Lead
	history []domain.LeadHistory
	now     func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads: make(map[string]*domain.Lead),
		now:   time.Now,
	}
}

// Create implements LeadRepository.
func (s *MemoryStore) Create(_ context.Context, lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	lead.ID = uuid.NewString()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	s.leads[lead.ID] = lead.Clone()
	return nil
}

// GetByID implements LeadRepository.
func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return lead.Clone(), nil
}

// Update implements LeadRepository. The version compare and the write happen
// under one lock so a stale token can never clobber a newer version.
func (s *MemoryStore) Update(_ context.Context, lead *domain.Lead, expectedUpdatedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.leads[lead.ID]
	if !ok {
		return ErrLeadNotFound
	}
	if expectedUpdatedAt != nil && stored.UpdatedAt.After(*expectedUpdatedAt) {
		return ErrVersionConflict
	}

	next := s.now()
	if !next.After(stored.UpdatedAt) {
		next = stored.UpdatedAt.Add(time.Microsecond)
	}
	lead.CreatedAt = stored.CreatedAt
	lead.UpdatedAt = next
	s.leads[lead.ID] = lead.Clone()
	return nil
}

// Delete implements LeadRepository.
func (s *MemoryStore) Delete(_ context.Context, id string) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	delete(s.leads, id)
	return lead.Clone(), nil
}

// ListWithFilter implements LeadRepository, ordered by updated_at descending.
func (s *MemoryStore) ListWithFilter(_ context.Context, filter LeadFilter) ([]domain.Lead, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if matchesFilter(lead, filter) {
			matched = append(matched, *lead.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Lead{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// CreateHistory implements LeadHistoryRepository.Create.
func (s *MemoryStore) CreateHistory(_ context.Context, entry *domain.LeadHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now()
	s.history = append(s.history, *entry)
	return nil
}

// ListHistoryByLead implements LeadHistoryRepository.ListByLead, newest-first.
func (s *MemoryStore) ListHistoryByLead(_ context.Context, leadID string, limit, offset int) ([]domain.LeadHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.LeadHistory, 0)
	// Entries are appended in commit order; walk backwards for newest-first.
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].LeadID == leadID {
			matched = append(matched, s.history[i])
		}
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.LeadHistory{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// HistoryRepo adapts the store to the LeadHistoryRepository interface.
func (s *MemoryStore) HistoryRepo() LeadHistoryRepository {
	return memoryHistoryRepo{store: s}
}

type memoryHistoryRepo struct {
	store *MemoryStore
}

func (r memoryHistoryRepo) Create(ctx context.Context, entry *domain.LeadHistory) error {
	return r.store.CreateHistory(ctx, entry)
}

func (r memoryHistoryRepo) ListByLead(ctx context.Context, leadID string, limit, offset int) ([]domain.LeadHistory, error) {
	return r.store.ListHistoryByLead(ctx, leadID, limit, offset)
}

func matchesFilter(lead *domain.Lead, filter LeadFilter) bool {
	if filter.OwnerID != nil && lead.OwnerID != *filter.OwnerID {
		return false
	}
	if filter.City != nil && lead.City != *filter.City {
		return false
	}
	if filter.PropertyType != nil && lead.PropertyType != *filter.PropertyType {
		return false
	}
	if filter.Status != nil && lead.Status != *filter.Status {
		return false
	}
	if filter.Timeline != nil && lead.Timeline != *filter.Timeline {
		return false
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		term := strings.ToLower(strings.TrimSpace(*filter.Search))
		haystack := strings.ToLower(lead.FullName) + " " + lead.Phone
		if lead.Email != nil {
			haystack += " " + strings.ToLower(*lead.Email)
		}
		if lead.Notes != nil {
			haystack += " " + strings.ToLower(*lead.Notes)
		}
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
