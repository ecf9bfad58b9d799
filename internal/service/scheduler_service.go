package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 60 * time.Second

// Job is a named cron trigger bound to a notification function.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// NotificationJobs is the fixed reminder calendar.
func NotificationJobs(r *ReminderService) []Job {
	return []Job{
		{Name: "reminder_1500", Spec: mustDailySpec("15:00"), Run: r.DailyReminder},
		{Name: "reminder_1800", Spec: mustDailySpec("18:00"), Run: r.DailyReminder},
		{Name: "reminder_2100", Spec: mustDailySpec("21:00"), Run: r.DailyReminder},
		{Name: "nudge_1200", Spec: mustDailySpec("12:00"), Run: r.NoonNudge},
		{Name: "weekly_summary", Spec: mustWeeklySpec(time.Sunday, "21:30"), Run: r.SundaySummary},
	}
}

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

type jobOutcome string

const (
	jobDone      jobOutcome = "done"
	jobCancelled jobOutcome = "cancelled"
	jobFailed    jobOutcome = "failed"
)

// Register adds a job; each run gets its own timeout and errors are only logged.
func (s *SchedulerService) Register(job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(job.Spec, func() { runJob(job) })
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	return id, nil
}

func runJob(job Job) jobOutcome {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	start := time.Now()
	err := job.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("scheduled job cancelled", "job", job.Name, "error", err, "took", time.Since(start))
		return jobCancelled
	case err != nil:
		slog.Error("scheduled job failed", "job", job.Name, "error", err)
		return jobFailed
	}
	slog.Info("scheduled job done", "job", job.Name, "took", time.Since(start))
	return jobDone
}

func (s *SchedulerService) RegisterAll(jobs []Job) error {
	for _, job := range jobs {
		if _, err := s.Register(job); err != nil {
			return err
		}
	}
	return nil
}

func (s *SchedulerService) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	hour, minute, err := parseClock(timeStr)
	if err != nil {
		return "", err
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

func buildWeeklySpec(day time.Weekday, timeStr string) (string, error) {
	hour, minute, err := parseClock(timeStr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0 %d %d * * %d", minute, hour, int(day)), nil
}

func mustDailySpec(timeStr string) string {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		panic(err)
	}
	return spec
}

func mustWeeklySpec(day time.Weekday, timeStr string) string {
	spec, err := buildWeeklySpec(day, timeStr)
	if err != nil {
		panic(err)
	}
	return spec
}

func parseClock(timeStr string) (int, int, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", timeStr)
	}
	return hour, minute, nil
}
