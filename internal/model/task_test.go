package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-close/internal/model"
)

func TestTaskToggleRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	task := model.Task{Title: "Buy milk", Status: model.StatusOpen}

	task.Toggle(now)
	assert.True(t, task.IsClosed())
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)

	task.Toggle(now.Add(time.Hour))
	assert.False(t, task.IsClosed())
	assert.Equal(t, model.StatusOpen, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestDayStatFull(t *testing.T) {
	assert.True(t, model.DayStat{Total: 2, Closed: 2}.Full())
	assert.False(t, model.DayStat{Total: 2, Closed: 1}.Full())
	assert.False(t, model.DayStat{}.Full())
}
