package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30*time.Minute, cfg.Enrollment.PlanTTL)
	assert.Equal(t, 10*time.Second, cfg.Enrollment.SubmitTimeout)
	assert.False(t, cfg.Enrollment.RejectEmptySchedule)
	assert.Equal(t, []string{"morning"}, cfg.Shifts.MorningKeywords)
	assert.Equal(t, []string{"full"}, cfg.Shifts.FullKeywords)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENROLLMENT_PLAN_TTL", "5m")
	t.Setenv("ENROLLMENT_REJECT_EMPTY_SCHEDULE", "true")
	t.Setenv("SHIFT_MORNING_KEYWORDS", "Morning, Sang ")
	t.Setenv("JWT_AUDIENCE", "Portal,Admin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Enrollment.PlanTTL)
	assert.True(t, cfg.Enrollment.RejectEmptySchedule)
	assert.Equal(t, []string{"morning", "sang"}, cfg.Shifts.MorningKeywords)
	assert.Equal(t, []string{"Portal", "Admin"}, cfg.JWT.Audience)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("not-a-duration", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
