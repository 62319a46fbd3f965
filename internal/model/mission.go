package model

import "time"

// Mission period constants.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodSpecial = "special"
)

type Mission struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Period      string    `json:"period"`
	Metric      string    `json:"metric"`
	Points      int       `json:"points"`
	Target      int       `json:"target"`
	Progress    int       `json:"progress"`
	Completed   bool      `json:"completed"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the mission's window has closed without completion.
func (m Mission) Expired(now time.Time) bool {
	return !m.Completed && now.After(m.ExpiresAt)
}
