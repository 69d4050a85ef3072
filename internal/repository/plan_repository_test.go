package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/class-enrollment-api/pkg/errors"
)

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPlanKey(t *testing.T) {
	assert.Equal(t, "enrollment:plan:stu-1", planKey("stu-1"))
}

func TestPlanRepositoryWrapsRedisErrors(t *testing.T) {
	client := unreachableRedis()
	defer client.Close()
	repo := NewPlanRepository(client)
	ctx := context.Background()

	_, err := repo.Load(ctx, "stu-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load staging plan")

	err = repo.Save(ctx, &models.StagingPlan{StudentID: "stu-1"}, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save staging plan")
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest []models.Shift
	assert.ErrorIs(t, repo.Get(ctx, "shifts:all", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "shifts:all", []models.Shift{}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "shifts:all"))
	assert.NoError(t, repo.Ping(ctx))
}
