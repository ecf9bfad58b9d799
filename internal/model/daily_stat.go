package model

// DailyStat tracks per-day notification state.
type DailyStat struct {
	DayKey    string `gorm:"primaryKey;size:10"`
	NudgeSent bool   `gorm:"default:false"`
}
