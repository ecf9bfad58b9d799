package service

import (
	"context"
	"strings"

	"daily-close/internal/clock"
	"daily-close/internal/model"
	"daily-close/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title string `validate:"required,max=280"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo repository.TaskRepositoryI
	clock    *clock.Clock
}

func NewTaskService(taskRepo repository.TaskRepositoryI, clk *clock.Clock) *TaskService {
	return &TaskService{taskRepo: taskRepo, clock: clk}
}

// CreateTask stores a new open task for today with the trimmed title.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateTask(&input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task := model.Task{
		Title:     input.Title,
		Status:    model.StatusOpen,
		DayKey:    s.clock.DayKey(now),
		CreatedAt: now,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleTask flips a task between open and closed.
func (s *TaskService) ToggleTask(ctx context.Context, taskID uint) (*model.Task, error) {
	return s.taskRepo.Toggle(ctx, taskID, s.clock.Now())
}

func (s *TaskService) ListToday(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.ListByDay(ctx, s.clock.Today())
}
