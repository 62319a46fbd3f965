package model

import "time"

type StoreItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PointCost   int       `json:"point_cost"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Purchase struct {
	ID          int64     `json:"id"`
	Receipt     string    `json:"receipt"`
	ItemID      int64     `json:"item_id"`
	UserID      int64     `json:"user_id"`
	PointsSpent int       `json:"points_spent"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type Badge struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Threshold   int       `json:"threshold"` // lifetime points at which the badge unlocks
	CreatedAt   time.Time `json:"created_at"`
}

type BadgeAward struct {
	ID        int64     `json:"id"`
	BadgeID   int64     `json:"badge_id"`
	UserID    int64     `json:"user_id"`
	AwardedAt time.Time `json:"awarded_at"`
}

type PremiumCode struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	UsedBy    *int64     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
