package model

import "time"

// WeightRecord is append-only from the user's perspective; the two most
// recent records by date determine the displayed trend.
type WeightRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	WeightKg  float64   `json:"weight_kg"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}
