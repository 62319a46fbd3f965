package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
)

// Scheduler keeps every user's mission board current. Each tick it generates
// the daily and weekly template missions for users who do not have an
// unexpired set, prunes incomplete missions past their window, and notifies
// subscribed devices when a fresh set appears.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	engine   *mission.Engine
	users    *store.UserStore
	missions *store.MissionStore
	push     *store.PushStore
	logger   *slog.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a mission scheduler.
func NewScheduler(svc *Service, engine *mission.Engine, userStore *store.UserStore, missionStore *store.MissionStore, pushStore *store.PushStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		engine:   engine,
		users:    userStore,
		missions: missionStore,
		push:     pushStore,
		logger:   logger,
		interval: 5 * time.Minute,
	}
}

// Start begins the scheduler loop. The first tick runs immediately so a
// restarted server does not leave users without missions for an interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	now := time.Now().UTC()

	if pruned, err := s.missions.DeleteExpired(now); err != nil {
		s.logger.Error("prune expired missions", "error", err)
	} else if pruned > 0 {
		s.logger.Info("pruned expired missions", "count", pruned)
	}

	userIDs, err := s.users.ListIDs()
	if err != nil {
		s.logger.Error("mission scheduler: list users", "error", err)
		return
	}

	for _, uid := range userIDs {
		s.renewFor(uid, now)
	}
}

func (s *Scheduler) renewFor(userID int64, now time.Time) {
	var renewed []string
	for _, period := range []string{model.PeriodDaily, model.PeriodWeekly} {
		_, created, err := s.engine.EnsureForPeriod(userID, period, now)
		if err != nil {
			s.logger.Error("mission scheduler: ensure missions", "user_id", userID, "period", period, "error", err)
			continue
		}
		if created {
			renewed = append(renewed, period)
		}
	}

	if len(renewed) == 0 {
		return
	}

	body := "Your daily missions are ready"
	if len(renewed) == 2 {
		body = "New daily and weekly missions are ready"
	} else if renewed[0] == model.PeriodWeekly {
		body = "A new week of missions is ready"
	}

	s.notify(userID, Payload{
		Title: "New Missions",
		Body:  body,
		URL:   "/missions",
		Tag:   fmt.Sprintf("missions-%s", now.Format("2006-01-02")),
	})
}

// NotifyMissionComplete tells the user's devices a mission paid out. Called
// from the logging handlers when a progress report flips a mission.
func (s *Scheduler) NotifyMissionComplete(userID int64, m model.Mission) {
	s.notify(userID, Payload{
		Title: "Mission Complete",
		Body:  fmt.Sprintf("%s done. %d points earned", m.Title, m.Points),
		URL:   "/missions",
		Tag:   fmt.Sprintf("mission-%d", m.ID),
	})
}

// NotifyBadgeAwarded tells the user's devices a badge was unlocked.
func (s *Scheduler) NotifyBadgeAwarded(userID int64, b model.Badge) {
	s.notify(userID, Payload{
		Title: "Badge Unlocked",
		Body:  fmt.Sprintf("You earned the %s badge", b.Title),
		URL:   "/profile",
		Tag:   fmt.Sprintf("badge-%d", b.ID),
	})
}

func (s *Scheduler) notify(userID int64, payload Payload) {
	if s.service == nil {
		return
	}
	subs, err := s.push.ListByUser(userID)
	if err != nil {
		s.logger.Error("push: list subscriptions", "user_id", userID, "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
			} else {
				s.logger.Error("push: send", "endpoint", sub.Endpoint, "error", err)
			}
		}
	}
}
