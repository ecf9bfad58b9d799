package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"daily-close/internal/clock"
	"daily-close/internal/model"
	"daily-close/internal/notify"
	"daily-close/internal/repository"
)

const (
	SubjectReminder = "Daily Close Reminder"
	SubjectNudge    = "Daily Close Nudge"
	SubjectSummary  = "Daily Close Weekly Summary"

	nudgeBody = "No tasks manifested yet today. Add your first task and build momentum 🚀"
)

// ReminderService composes the scheduled notifications and hands them to a sender.
type ReminderService struct {
	taskRepo  repository.TaskRepositoryI
	statsRepo repository.DailyStatRepositoryI
	stats     *StatsService
	sender    notify.Sender
	clock     *clock.Clock
}

func NewReminderService(taskRepo repository.TaskRepositoryI, statsRepo repository.DailyStatRepositoryI, stats *StatsService, sender notify.Sender, clk *clock.Clock) *ReminderService {
	return &ReminderService{
		taskRepo:  taskRepo,
		statsRepo: statsRepo,
		stats:     stats,
		sender:    sender,
		clock:     clk,
	}
}

// DailyReminder lists today's open tasks.
func (s *ReminderService) DailyReminder(ctx context.Context) error {
	open, err := s.taskRepo.ListOpenByDay(ctx, s.clock.Today())
	if err != nil {
		return fmt.Errorf("list open tasks: %w", err)
	}
	return s.sender.Send(ctx, SubjectReminder, ReminderBody(open))
}

// NoonNudge fires at most once per day, and only while the day has no tasks.
func (s *ReminderService) NoonNudge(ctx context.Context) error {
	day := s.clock.Today()
	stat, err := s.statsRepo.Get(ctx, day)
	if err != nil {
		return err
	}
	if stat != nil && stat.NudgeSent {
		slog.Debug("nudge already sent", "day", day)
		return nil
	}

	count, err := s.taskRepo.CountByDay(ctx, day)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := s.sender.Send(ctx, SubjectNudge, nudgeBody); err != nil {
		return err
	}
	return s.statsRepo.MarkNudgeSent(ctx, day)
}

// SundaySummary reports the trailing week and its productivity score.
func (s *ReminderService) SundaySummary(ctx context.Context) error {
	weekly, err := s.stats.Weekly(ctx)
	if err != nil {
		return fmt.Errorf("weekly stats: %w", err)
	}
	return s.sender.Send(ctx, SubjectSummary, SummaryBody(weekly))
}

func ReminderBody(open []model.Task) string {
	if len(open) == 0 {
		return MessageAllClosed
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("You have %d pending tasks:\n", len(open)))
	for i, task := range open {
		if i > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString("• ")
		builder.WriteString(strings.TrimSpace(task.Title))
	}
	builder.WriteString("\n\nClose your day strong 💪")
	return builder.String()
}

func SummaryBody(weekly []model.DayStat) string {
	var builder strings.Builder
	builder.WriteString("Weekly Daily Close Summary\n\n")
	for _, day := range weekly {
		builder.WriteString(fmt.Sprintf("%s: %d/%d (%d%%)\n", day.Date, day.Closed, day.Total, day.Percent))
	}
	builder.WriteString(fmt.Sprintf("\nWeekly productivity score: %d", WeeklyScore(weekly)))
	return builder.String()
}
