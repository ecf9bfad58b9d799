package model

import "time"

type TaskStatus string

const (
	StatusOpen   TaskStatus = "open"
	StatusClosed TaskStatus = "closed"
)

// MaxTitleLen bounds the stored title length in runes.
const MaxTitleLen = 280

// Task is a single item recorded for one calendar day.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:280;not null" json:"title"`
	Status      TaskStatus `gorm:"size:16;not null;default:open" json:"status"`
	DayKey      string     `gorm:"size:10;not null;index" json:"day_key"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (t *Task) IsClosed() bool {
	return t.Status == StatusClosed
}

// Toggle flips the status, keeping CompletedAt set exactly when the task is closed.
func (t *Task) Toggle(now time.Time) {
	if t.Status == StatusOpen {
		t.Status = StatusClosed
		t.CompletedAt = &now
		return
	}
	t.Status = StatusOpen
	t.CompletedAt = nil
}
