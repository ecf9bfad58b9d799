package service

import (
	"context"

	"daily-close/internal/clock"
	"daily-close/internal/model"
	"daily-close/internal/repository"
)

const (
	weekDays     = 7
	historyLimit = 30

	MessageAllClosed = "All tasks closed. Solid day. 🔥"
	MessageOverload  = "You’re carrying a lot today. Consider reducing daily load for better closure."
)

// StatsService derives completion statistics from stored tasks.
type StatsService struct {
	taskRepo repository.TaskRepositoryI
	clock    *clock.Clock
}

func NewStatsService(taskRepo repository.TaskRepositoryI, clk *clock.Clock) *StatsService {
	return &StatsService{taskRepo: taskRepo, clock: clk}
}

// Percent returns floor(100*closed/total), or 0 for an empty day.
func Percent(closed, total int) int {
	if total <= 0 {
		return 0
	}
	return closed * 100 / total
}

// NewDayStat fills the derived fields of a day aggregate.
func NewDayStat(dayKey string, total, closed int) model.DayStat {
	return model.DayStat{
		Date:    dayKey,
		Total:   total,
		Closed:  closed,
		Pending: total - closed,
		Percent: Percent(closed, total),
	}
}

// ContextMessage picks the banner shown on the main view for a day.
func ContextMessage(day model.DayStat) string {
	switch {
	case day.Total > 0 && day.Pending == 0:
		return MessageAllClosed
	case day.Total >= 8 && day.Pending >= 5:
		return MessageOverload
	default:
		return ""
	}
}

// WeeklyScore is the completion percentage over all tasks of the given days.
func WeeklyScore(days []model.DayStat) int {
	var total, closed int
	for _, d := range days {
		total += d.Total
		closed += d.Closed
	}
	return Percent(closed, total)
}

// LongestRun returns the longest run of full-closure days. Days are expected in
// ascending order; any day that is not fully closed resets the run.
func LongestRun(days []model.DayStat) int {
	longest, run := 0, 0
	for _, d := range days {
		if !d.Full() {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Day aggregates one day; malformed keys are rejected before any query runs.
func (s *StatsService) Day(ctx context.Context, dayKey string) (model.DayStat, error) {
	if _, _, err := s.clock.Bounds(dayKey); err != nil {
		return model.DayStat{}, err
	}
	counts, err := s.taskRepo.CountsForDays(ctx, []string{dayKey})
	if err != nil {
		return model.DayStat{}, err
	}
	if len(counts) == 0 {
		return NewDayStat(dayKey, 0, 0), nil
	}
	return NewDayStat(dayKey, counts[0].Total, counts[0].Closed), nil
}

func (s *StatsService) Today(ctx context.Context) (model.DayStat, error) {
	return s.Day(ctx, s.clock.Today())
}

// Weekly returns the seven days ending today, oldest first, including empty days.
func (s *StatsService) Weekly(ctx context.Context) ([]model.DayStat, error) {
	days := s.clock.LastDays(weekDays)
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = s.clock.DayKey(d)
	}

	counts, err := s.taskRepo.CountsForDays(ctx, keys)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]model.DayCount, len(counts))
	for _, c := range counts {
		byDay[c.DayKey] = c
	}

	weekly := make([]model.DayStat, len(days))
	for i, d := range days {
		c := byDay[keys[i]]
		stat := NewDayStat(keys[i], c.Total, c.Closed)
		stat.Weekday = d.Format("Mon")
		weekly[i] = stat
	}
	return weekly, nil
}

// History returns the most recent days with tasks, newest first.
func (s *StatsService) History(ctx context.Context) ([]model.DayStat, error) {
	counts, err := s.taskRepo.RecentDayCounts(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	history := make([]model.DayStat, len(counts))
	for i, c := range counts {
		history[i] = NewDayStat(c.DayKey, c.Total, c.Closed)
	}
	return history, nil
}

// CurrentStreak counts consecutive full-closure days walking back from today.
func (s *StatsService) CurrentStreak(ctx context.Context) (int, error) {
	counts, err := s.taskRepo.AllDayCounts(ctx)
	if err != nil {
		return 0, err
	}
	byDay := make(map[string]model.DayCount, len(counts))
	for _, c := range counts {
		byDay[c.DayKey] = c
	}

	streak := 0
	day := s.clock.Today()
	for {
		c, ok := byDay[day]
		if !ok || c.Total == 0 || c.Closed != c.Total {
			return streak, nil
		}
		streak++
		if day, err = clock.PrevDay(day); err != nil {
			return streak, err
		}
	}
}

// LongestStreak scans every recorded day in ascending order.
func (s *StatsService) LongestStreak(ctx context.Context) (int, error) {
	counts, err := s.taskRepo.AllDayCounts(ctx)
	if err != nil {
		return 0, err
	}
	days := make([]model.DayStat, len(counts))
	for i, c := range counts {
		days[i] = NewDayStat(c.DayKey, c.Total, c.Closed)
	}
	return LongestRun(days), nil
}

func (s *StatsService) WeeklyScore(ctx context.Context) (int, error) {
	weekly, err := s.Weekly(ctx)
	if err != nil {
		return 0, err
	}
	return WeeklyScore(weekly), nil
}

func (s *StatsService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	weekly, err := s.Weekly(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	streak, err := s.CurrentStreak(ctx)
	if err != nil {
		return nil, err
	}
	longest, err := s.LongestStreak(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Dashboard{
		Today:         today,
		Weekly:        weekly,
		History:       history,
		Streak:        streak,
		LongestStreak: longest,
		WeeklyScore:   WeeklyScore(weekly),
	}, nil
}
