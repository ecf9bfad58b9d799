package service

import (
	"context"

	"daily-close/internal/model"
)

type TaskServiceI interface {
	// Trims and validates the title, then stores an open task for today
	CreateTask(ctx context.Context, input TaskInput) (*model.Task, error)
	ToggleTask(ctx context.Context, taskID uint) (*model.Task, error)
	ListToday(ctx context.Context) ([]model.Task, error)
}

type StatsServiceI interface {
	Today(ctx context.Context) (model.DayStat, error)
	Weekly(ctx context.Context) ([]model.DayStat, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

type AuthServiceI interface {
	// Returns the account email on success, errvalues.ErrWrongCredentials otherwise
	Login(ctx context.Context, email, password string) (string, error)
	Owner() string
}
