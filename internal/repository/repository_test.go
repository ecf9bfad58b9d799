package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"daily-close/internal/errvalues"
	"daily-close/internal/model"
	"daily-close/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB("sqlite:///" + filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func addTask(t *testing.T, repo *repository.TaskRepository, title, dayKey string, status model.TaskStatus, createdAt time.Time) *model.Task {
	t.Helper()
	task := &model.Task{Title: title, Status: status, DayKey: dayKey, CreatedAt: createdAt}
	if status == model.StatusClosed {
		task.CompletedAt = &createdAt
	}
	require.NoError(t, repo.Create(context.Background(), task))
	return task
}

var base = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func TestNewDBIdempotent(t *testing.T) {
	path := "sqlite:///" + filepath.Join(t.TempDir(), "again.db")

	first, err := repository.NewDB(path)
	require.NoError(t, err)
	repo := repository.NewTaskRepository(first)
	addTask(t, repo, "survives", "2026-10-19", model.StatusOpen, base)
	sqlDB, err := first.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	second, err := repository.NewDB(path)
	require.NoError(t, err)
	count, err := repository.NewTaskRepository(second).CountByDay(context.Background(), "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTaskCreateAndFind(t *testing.T) {
	repo := repository.NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := addTask(t, repo, "Buy milk", "2026-10-19", model.StatusOpen, base)
	assert.NotZero(t, task.ID)

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Title)
	assert.Equal(t, model.StatusOpen, found.Status)
	assert.Nil(t, found.CompletedAt)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, errvalues.ErrTaskNotFound)
}

func TestTaskToggle(t *testing.T) {
	repo := repository.NewTaskRepository(newTestDB(t))
	ctx := context.Background()
	task := addTask(t, repo, "Write report", "2026-10-19", model.StatusOpen, base)

	t.Run("close", func(t *testing.T) {
		toggled, err := repo.Toggle(ctx, task.ID, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, model.StatusClosed, toggled.Status)

		stored, err := repo.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusClosed, stored.Status)
		require.NotNil(t, stored.CompletedAt)
		assert.True(t, stored.CompletedAt.Equal(base.Add(time.Hour)))
	})

	t.Run("reopen", func(t *testing.T) {
		toggled, err := repo.Toggle(ctx, task.ID, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, toggled.Status)

		stored, err := repo.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, stored.Status)
		assert.Nil(t, stored.CompletedAt)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.Toggle(ctx, 424242, base)
		assert.ErrorIs(t, err, errvalues.ErrTaskNotFound)
	})
}

func TestTaskListsByDay(t *testing.T) {
	repo := repository.NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	addTask(t, repo, "first", "2026-10-19", model.StatusOpen, base)
	addTask(t, repo, "second", "2026-10-19", model.StatusClosed, base.Add(time.Minute))
	addTask(t, repo, "third", "2026-10-19", model.StatusOpen, base.Add(2*time.Minute))
	addTask(t, repo, "other day", "2026-10-18", model.StatusOpen, base.Add(-24*time.Hour))

	all, err := repo.ListByDay(ctx, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "first", all[2].Title)

	open, err := repo.ListOpenByDay(ctx, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "first", open[0].Title)
	assert.Equal(t, "third", open[1].Title)

	count, err := repo.CountByDay(ctx, "2026-10-17")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDayCounts(t *testing.T) {
	repo := repository.NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	addTask(t, repo, "a", "2026-10-17", model.StatusClosed, base)
	addTask(t, repo, "b", "2026-10-17", model.StatusOpen, base)
	addTask(t, repo, "c", "2026-10-18", model.StatusOpen, base)
	addTask(t, repo, "d", "2026-10-19", model.StatusClosed, base)
	addTask(t, repo, "e", "2026-10-19", model.StatusClosed, base)

	counts, err := repo.CountsForDays(ctx, []string{"2026-10-16", "2026-10-17", "2026-10-19"})
	require.NoError(t, err)
	assert.Equal(t, []model.DayCount{
		{DayKey: "2026-10-17", Total: 2, Closed: 1},
		{DayKey: "2026-10-19", Total: 2, Closed: 2},
	}, counts)

	empty, err := repo.CountsForDays(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := repo.AllDayCounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-10-17", all[0].DayKey)
	assert.Equal(t, model.DayCount{DayKey: "2026-10-18", Total: 1, Closed: 0}, all[1])

	recent, err := repo.RecentDayCounts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2026-10-19", recent[0].DayKey)
	assert.Equal(t, "2026-10-18", recent[1].DayKey)
}

func TestDailyStatNudge(t *testing.T) {
	repo := repository.NewDailyStatRepository(newTestDB(t))
	ctx := context.Background()

	stat, err := repo.Get(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Nil(t, stat)

	require.NoError(t, repo.MarkNudgeSent(ctx, "2026-10-19"))
	// second mark hits the upsert path
	require.NoError(t, repo.MarkNudgeSent(ctx, "2026-10-19"))

	stat, err = repo.Get(ctx, "2026-10-19")
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.True(t, stat.NudgeSent)

	other, err := repo.Get(ctx, "2026-10-20")
	require.NoError(t, err)
	assert.Nil(t, other)
}
