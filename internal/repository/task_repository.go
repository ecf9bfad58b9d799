package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"daily-close/internal/errvalues"
	"daily-close/internal/model"
)

const dayCountColumns = "day_key, COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS closed"

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errvalues.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Toggle(ctx context.Context, id uint, now time.Time) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errvalues.ErrTaskNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}
		task.Toggle(now)
		updates := map[string]interface{}{
			"status":       string(task.Status),
			"completed_at": task.CompletedAt,
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return fmt.Errorf("toggle task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByDay(ctx context.Context, dayKey string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("day_key = ?", dayKey).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListOpenByDay(ctx context.Context, dayKey string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("day_key = ? AND status = ?", dayKey, string(model.StatusOpen)).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountByDay(ctx context.Context, dayKey string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("day_key = ?", dayKey).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) CountsForDays(ctx context.Context, dayKeys []string) ([]model.DayCount, error) {
	if len(dayKeys) == 0 {
		return nil, nil
	}
	var counts []model.DayCount
	if err := r.dayCounts(ctx).Where("day_key IN ?", dayKeys).
		Order("day_key ASC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count tasks by day: %w", err)
	}
	return counts, nil
}

func (r *TaskRepository) AllDayCounts(ctx context.Context) ([]model.DayCount, error) {
	var counts []model.DayCount
	if err := r.dayCounts(ctx).Order("day_key ASC").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count tasks by day: %w", err)
	}
	return counts, nil
}

func (r *TaskRepository) RecentDayCounts(ctx context.Context, limit int) ([]model.DayCount, error) {
	var counts []model.DayCount
	if err := r.dayCounts(ctx).Order("day_key DESC").Limit(limit).Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count recent days: %w", err)
	}
	return counts, nil
}

func (r *TaskRepository) dayCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Select(dayCountColumns, string(model.StatusClosed)).
		Group("day_key")
}
