package model

import "time"

type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	CurrentWeight  float64    `json:"current_weight_kg"`
	TargetWeight   float64    `json:"target_weight_kg"`
	HeightCM       float64    `json:"height_cm"`
	Points         int        `json:"points"`
	IsPremium      bool       `json:"is_premium"`
	PremiumSince   *time.Time `json:"premium_since,omitempty"`
	StripeCustomer string     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
