package handler

import (
	"log/slog"

	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/push"
	"github.com/perivale/fitquest/internal/store"
	"github.com/perivale/fitquest/internal/websocket"
)

// Rewards fans out the side effects of mission completions: device sync,
// push notifications, and badge awards. Every handler that can complete a
// mission funnels its results through here so the behavior stays uniform.
type Rewards struct {
	hub       *websocket.Hub
	scheduler *push.Scheduler
	badges    *store.BadgeStore
	logger    *slog.Logger
}

func NewRewards(hub *websocket.Hub, scheduler *push.Scheduler, badges *store.BadgeStore, logger *slog.Logger) *Rewards {
	return &Rewards{hub: hub, scheduler: scheduler, badges: badges, logger: logger}
}

// MissionResults processes the outcome of one or more progress reports for a
// user. Completed missions are announced to the user's devices and any newly
// crossed badge thresholds are awarded.
func (rw *Rewards) MissionResults(userID int64, results []mission.Progress) {
	completed := false
	for _, p := range results {
		if !p.JustCompleted {
			continue
		}
		completed = true

		if rw.hub != nil {
			rw.hub.Send(userID, websocket.NewMessage(websocket.EntityMission, "completed", p.Mission.ID, map[string]any{
				"points": p.Mission.Points,
			}))
		}
		if rw.scheduler != nil {
			rw.scheduler.NotifyMissionComplete(userID, p.Mission)
		}
	}

	if !completed || rw.badges == nil {
		return
	}

	awarded, err := rw.badges.AwardEligible(userID)
	if err != nil {
		rw.logger.Error("award badges", "user_id", userID, "error", err)
		return
	}
	for _, b := range awarded {
		if rw.hub != nil {
			rw.hub.Send(userID, websocket.NewMessage(websocket.EntityBadge, "awarded", b.ID, nil))
		}
		if rw.scheduler != nil {
			rw.scheduler.NotifyBadgeAwarded(userID, b)
		}
	}
}

// Sync broadcasts an entity change to the user's other devices.
func (rw *Rewards) Sync(userID int64, msg websocket.Message) {
	if rw.hub != nil {
		rw.hub.Send(userID, msg)
	}
}
