// Package mission owns the gamification rules: which missions exist for a
// period, when new ones are generated, and how progress turns into points.
package mission

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
)

var (
	ErrNotFound      = errors.New("mission not found")
	ErrExpired       = errors.New("mission expired")
	ErrUnknownPeriod = errors.New("unknown mission period")
)

// Progress is the outcome of a progress report.
type Progress struct {
	Mission model.Mission `json:"mission"`
	// DisplayProgress is clamped to the target for rendering; the stored
	// progress keeps the raw reported value.
	DisplayProgress int  `json:"display_progress"`
	JustCompleted   bool `json:"just_completed"`
}

type Engine struct {
	missions *store.MissionStore
	logger   *slog.Logger
}

func NewEngine(missions *store.MissionStore, logger *slog.Logger) *Engine {
	return &Engine{missions: missions, logger: logger}
}

// EnsureForPeriod generates the period's template missions for a user unless
// unexpired missions of that period already exist. Calling it again inside
// the same period is a no-op, so callers may invoke it on every screen load.
func (e *Engine) EnsureForPeriod(userID int64, period string, now time.Time) ([]model.Mission, bool, error) {
	templates := TemplatesFor(period)
	if templates == nil {
		return nil, false, ErrUnknownPeriod
	}

	existing, err := e.missions.ListForPeriod(userID, period, PeriodStart(period, now))
	if err != nil {
		return nil, false, fmt.Errorf("list missions: %w", err)
	}
	if len(existing) > 0 {
		return existing, false, nil
	}

	expiresAt := now.Add(PeriodDuration(period))
	created := make([]model.Mission, 0, len(templates))
	for _, t := range templates {
		m, err := e.missions.Create(userID, t.Title, t.Description, t.Period, t.Metric, t.Points, t.Target, expiresAt)
		if err != nil {
			// No retry; already-created missions stand and the store is
			// otherwise untouched.
			return created, len(created) > 0, fmt.Errorf("create mission %q: %w", t.Title, err)
		}
		created = append(created, *m)
	}

	e.logger.Info("generated missions", "user_id", userID, "period", period, "count", len(created))
	return created, true, nil
}

// ReportProgress persists the raw progress value and, when it first reaches
// the target, credits the mission's points to the user. The store performs
// the completion flip and the credit in one transaction guarded by the stored
// completed flag, so points are never awarded twice even under concurrent
// reports.
func (e *Engine) ReportProgress(missionID int64, newProgress int, now time.Time) (*Progress, error) {
	m, err := e.missions.GetByID(missionID)
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	if m == nil {
		return nil, ErrNotFound
	}
	if m.Expired(now) {
		return nil, ErrExpired
	}

	if newProgress < 0 {
		newProgress = 0
	}

	updated, justCompleted, err := e.missions.ReportProgress(missionID, newProgress)
	if err != nil {
		return nil, fmt.Errorf("report progress: %w", err)
	}

	if justCompleted {
		e.logger.Info("mission completed", "mission_id", missionID, "user_id", updated.UserID, "points", updated.Points)
	}

	display := updated.Progress
	if display > updated.Target {
		display = updated.Target
	}
	return &Progress{Mission: *updated, DisplayProgress: display, JustCompleted: justCompleted}, nil
}

// Advance adds delta to every active mission of the user that tracks the
// given metric. Logging handlers call this after a food, exercise, or weight
// write so missions progress without a separate client round trip.
func (e *Engine) Advance(userID int64, metric string, delta int, now time.Time) ([]Progress, error) {
	if delta <= 0 {
		return nil, nil
	}

	active, err := e.missions.ListActiveByMetric(userID, metric, now)
	if err != nil {
		return nil, fmt.Errorf("list active missions: %w", err)
	}

	var results []Progress
	for _, m := range active {
		p, err := e.ReportProgress(m.ID, m.Progress+delta, now)
		if err != nil {
			e.logger.Error("advance mission", "mission_id", m.ID, "metric", metric, "error", err)
			continue
		}
		results = append(results, *p)
	}
	return results, nil
}
