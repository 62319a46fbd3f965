package model

import "time"

// Notification type constants
const (
	NotifTypeMissionComplete = "mission_complete"
	NotifTypeMissionsRenewed = "missions_renewed"
	NotifTypeBadgeAwarded    = "badge_awarded"
)

type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
