package model

// DayCount is the number of tasks and closed tasks recorded for a day.
type DayCount struct {
	DayKey string
	Total  int
	Closed int
}

// DayStat is the aggregate view of one day.
type DayStat struct {
	Weekday string `json:"day,omitempty"`
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Closed  int    `json:"closed"`
	Pending int    `json:"pending"`
	Percent int    `json:"pct"`
}

// Full reports whether the day has at least one task and all of them are closed.
func (d DayStat) Full() bool {
	return d.Total > 0 && d.Closed == d.Total
}

type Dashboard struct {
	Today         DayStat   `json:"today"`
	Weekly        []DayStat `json:"weekly"`
	History       []DayStat `json:"history"`
	Streak        int       `json:"streak"`
	LongestStreak int       `json:"longest_streak"`
	WeeklyScore   int       `json:"weekly_score"`
}
