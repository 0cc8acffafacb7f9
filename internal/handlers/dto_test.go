package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/models"
)

func TestToTaskResponse(t *testing.T) {
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	due := now.Add(5*time.Hour + 30*time.Minute)

	resp, err := toTaskResponse(&models.Task{ID: 9, Name: "budget", Status: models.StatusPending, DueAt: &due}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, "budget", resp.Name)
	require.NotNil(t, resp.HoursRemaining)
	assert.Equal(t, int64(5), *resp.HoursRemaining)

	resp, err = toTaskResponse(&models.Task{ID: 10, Status: models.StatusCompleted, DueAt: &due}, now)
	require.NoError(t, err)
	assert.Nil(t, resp.HoursRemaining, "completed tasks carry no countdown")
}

func TestMappingErrorsAreReturned(t *testing.T) {
	_, err := toTaskResponse(nil, time.Now())
	assert.Error(t, err)

	_, err = toUserResponse(nil)
	assert.Error(t, err)
}
