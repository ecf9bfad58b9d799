package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daily-close/internal/model"
)

// DailyStatRepository stores per-day notification flags.
type DailyStatRepository struct {
	db *gorm.DB
}

func NewDailyStatRepository(db *gorm.DB) *DailyStatRepository {
	return &DailyStatRepository{db: db}
}

func (r *DailyStatRepository) Get(ctx context.Context, dayKey string) (*model.DailyStat, error) {
	var stat model.DailyStat
	err := r.db.WithContext(ctx).Where("day_key = ?", dayKey).First(&stat).Error
	switch {
	case err == nil:
		return &stat, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find daily stat: %w", err)
	}
}

func (r *DailyStatRepository) MarkNudgeSent(ctx context.Context, dayKey string) error {
	stat := model.DailyStat{DayKey: dayKey, NudgeSent: true}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"nudge_sent": true}),
	}).Create(&stat).Error
	if err != nil {
		return fmt.Errorf("mark nudge sent: %w", err)
	}
	return nil
}
