package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daily-close/internal/clock"
	"daily-close/internal/model"
	"daily-close/internal/repository"
)

type testEnv struct {
	tasks *repository.TaskRepository
	stats *repository.DailyStatRepository
	clock *clock.Clock
}

// 2026-10-19 is a Monday.
func testNow(t *testing.T) (*time.Location, time.Time) {
	t.Helper()
	loc, err := clock.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc, time.Date(2026, 10, 19, 10, 0, 0, 0, loc)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	loc, now := testNow(t)
	return &testEnv{
		tasks: repository.NewTaskRepository(db),
		stats: repository.NewDailyStatRepository(db),
		clock: clock.NewFixed(loc, now),
	}
}

// dayKey returns the key of the day `ago` days before the test's today.
func (e *testEnv) dayKey(ago int) string {
	return e.clock.DayKey(e.clock.Now().AddDate(0, 0, -ago))
}

// seedDay stores total tasks for the day, the first closed of them closed.
func (e *testEnv) seedDay(t *testing.T, dayKey string, total, closed int) {
	t.Helper()
	ctx := context.Background()
	now := e.clock.Now()
	for i := 0; i < total; i++ {
		task := &model.Task{Title: "task", Status: model.StatusOpen, DayKey: dayKey, CreatedAt: now.Add(time.Duration(i) * time.Minute)}
		if i < closed {
			task.Status = model.StatusClosed
			task.CompletedAt = &now
		}
		require.NoError(t, e.tasks.Create(ctx, task))
	}
}
