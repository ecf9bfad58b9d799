package repository

import (
	"context"
	"time"

	"daily-close/internal/model"
)

type TaskRepositoryI interface {
	// Inserts the task and fills its ID
	Create(ctx context.Context, task *model.Task) error
	// Looks up a task by id. Returns errvalues.ErrTaskNotFound when absent
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	// Flips status and completion time of a task in one transaction
	Toggle(ctx context.Context, id uint, now time.Time) (*model.Task, error)
	// Lists all tasks of a day, newest first
	ListByDay(ctx context.Context, dayKey string) ([]model.Task, error)
	// Lists open tasks of a day, oldest first
	ListOpenByDay(ctx context.Context, dayKey string) ([]model.Task, error)
	CountByDay(ctx context.Context, dayKey string) (int64, error)
	// Returns total/closed counts for the given days. Days without tasks are omitted
	CountsForDays(ctx context.Context, dayKeys []string) ([]model.DayCount, error)
	// Returns counts for every day that has at least one task, ascending by day
	AllDayCounts(ctx context.Context) ([]model.DayCount, error)
	// Returns counts for the most recent days with tasks, descending by day
	RecentDayCounts(ctx context.Context, limit int) ([]model.DayCount, error)
}

type DailyStatRepositoryI interface {
	// Returns nil without error when no row exists for the day
	Get(ctx context.Context, dayKey string) (*model.DailyStat, error)
	// Creates or updates the day's row with nudge_sent = true
	MarkNudgeSent(ctx context.Context, dayKey string) error
}
