package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
)

type MissionHandler struct {
	engine       *mission.Engine
	missionStore *store.MissionStore
	rewards      *Rewards
	logger       *slog.Logger
}

func NewMissionHandler(engine *mission.Engine, ms *store.MissionStore, rewards *Rewards, logger *slog.Logger) *MissionHandler {
	return &MissionHandler{engine: engine, missionStore: ms, rewards: rewards, logger: logger}
}

// List handles GET /api/missions. The current daily and weekly sets are
// generated on demand, so a user always sees a full board.
func (h *MissionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	now := time.Now()

	var missions []model.Mission
	for _, period := range []string{model.PeriodDaily, model.PeriodWeekly} {
		set, _, err := h.engine.EnsureForPeriod(userID, period, now)
		if err != nil {
			h.logger.Error("ensure missions", "period", period, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load missions"})
			return
		}
		missions = append(missions, set...)
	}

	// Clamp progress for display; the raw value stays in storage.
	type view struct {
		model.Mission
		DisplayProgress int `json:"display_progress"`
	}
	out := make([]view, len(missions))
	for i, m := range missions {
		display := m.Progress
		if display > m.Target {
			display = m.Target
		}
		out[i] = view{Mission: m, DisplayProgress: display}
	}
	writeJSON(w, http.StatusOK, out)
}

type progressRequest struct {
	Progress int `json:"progress"`
}

// ReportProgress handles POST /api/missions/{id}/progress. Progress is the
// client's raw cumulative count; completion and the one-time point credit are
// decided server-side.
func (h *MissionHandler) ReportProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	m, err := h.missionStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get mission"})
		return
	}
	if m == nil || m.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mission not found"})
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	p, err := h.engine.ReportProgress(id, req.Progress, time.Now())
	switch {
	case errors.Is(err, mission.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mission not found"})
		return
	case errors.Is(err, mission.ErrExpired):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "mission expired"})
		return
	case err != nil:
		h.logger.Error("report progress", "mission_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to report progress"})
		return
	}

	h.rewards.MissionResults(userID, []mission.Progress{*p})
	writeJSON(w, http.StatusOK, p)
}

// History handles GET /api/missions/history: every mission of the user,
// including completed and archived ones.
func (h *MissionHandler) History(w http.ResponseWriter, r *http.Request) {
	missions, err := h.missionStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load missions"})
		return
	}
	if missions == nil {
		missions = []model.Mission{}
	}
	writeJSON(w, http.StatusOK, missions)
}
