package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

// PlanStore persists staging plans between requests.
type PlanStore interface {
	Load(ctx context.Context, studentID string) (*models.StagingPlan, error)
	Save(ctx context.Context, plan *models.StagingPlan, ttl time.Duration) error
	Delete(ctx context.Context, studentID string) error
}

type storedPlan struct {
	plan      models.StagingPlan
	expiresAt time.Time
}

// MemoryPlanStore keeps plans in process memory. It is used when Redis is
// disabled and only suits a single instance.
type MemoryPlanStore struct {
	mu    sync.RWMutex
	items map[string]storedPlan
	now   func() time.Time
}

// NewMemoryPlanStore constructs an empty in-memory store.
func NewMemoryPlanStore() *MemoryPlanStore {
	return &MemoryPlanStore{items: make(map[string]storedPlan), now: time.Now}
}

// Load returns a copy of the plan or nil when absent or expired.
func (s *MemoryPlanStore) Load(_ context.Context, studentID string) (*models.StagingPlan, error) {
	s.mu.RLock()
	item, ok := s.items[studentID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !s.now().Before(item.expiresAt) {
		_ = s.Delete(context.Background(), studentID)
		return nil, nil
	}
	plan := item.plan
	plan.Entries = append([]models.StagedEntry(nil), item.plan.Entries...)
	return &plan, nil
}

// Save stores a copy of the plan until ttl elapses.
func (s *MemoryPlanStore) Save(_ context.Context, plan *models.StagingPlan, ttl time.Duration) error {
	copied := *plan
	copied.Entries = append([]models.StagedEntry(nil), plan.Entries...)
	s.mu.Lock()
	s.items[plan.StudentID] = storedPlan{plan: copied, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete discards the student's plan.
func (s *MemoryPlanStore) Delete(_ context.Context, studentID string) error {
	s.mu.Lock()
	delete(s.items, studentID)
	s.mu.Unlock()
	return nil
}
