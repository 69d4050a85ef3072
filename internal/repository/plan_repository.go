package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/class-enrollment-api/internal/models"
)

const planKeyPrefix = "enrollment:plan:"

// PlanRepository keeps staging plans in Redis. Keys expire after the plan TTL
// so abandoned plans disappear on their own.
type PlanRepository struct {
	client *redis.Client
}

// NewPlanRepository constructs a Redis backed plan repository.
func NewPlanRepository(client *redis.Client) *PlanRepository {
	return &PlanRepository{client: client}
}

func planKey(studentID string) string {
	return planKeyPrefix + studentID
}

// Load returns the student's plan or nil when none is stored.
func (r *PlanRepository) Load(ctx context.Context, studentID string) (*models.StagingPlan, error) {
	raw, err := r.client.Get(ctx, planKey(studentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load staging plan: %w", err)
	}
	var plan models.StagingPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("decode staging plan: %w", err)
	}
	return &plan, nil
}

// Save stores the plan and resets its expiry.
func (r *PlanRepository) Save(ctx context.Context, plan *models.StagingPlan, ttl time.Duration) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode staging plan: %w", err)
	}
	if err := r.client.Set(ctx, planKey(plan.StudentID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save staging plan: %w", err)
	}
	return nil
}

// Delete discards the student's plan.
func (r *PlanRepository) Delete(ctx context.Context, studentID string) error {
	if err := r.client.Del(ctx, planKey(studentID)).Err(); err != nil {
		return fmt.Errorf("delete staging plan: %w", err)
	}
	return nil
}
