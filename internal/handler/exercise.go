package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/metrics"
	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
	"github.com/perivale/fitquest/internal/websocket"
)

type ExerciseHandler struct {
	exerciseStore *store.ExerciseStore
	userStore     *store.UserStore
	engine        *mission.Engine
	rewards       *Rewards
	logger        *slog.Logger
}

func NewExerciseHandler(es *store.ExerciseStore, us *store.UserStore, engine *mission.Engine, rewards *Rewards, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseStore: es, userStore: us, engine: engine, rewards: rewards, logger: logger}
}

type exerciseRequest struct {
	Activity        string  `json:"activity"`
	DurationMinutes int     `json:"duration_minutes"`
	CaloriesBurned  float64 `json:"calories_burned"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
}

func (req *exerciseRequest) validate(now time.Time) string {
	req.Activity = strings.ToLower(strings.TrimSpace(req.Activity))
	if req.Activity == "" {
		return "activity is required"
	}
	if req.DurationMinutes <= 0 {
		return "duration_minutes must be positive"
	}
	if req.CaloriesBurned < 0 {
		return "calories_burned must not be negative"
	}
	if req.Date == "" {
		req.Date = now.Format(dateLayout)
	}
	if !validDate(req.Date) {
		return "date must be YYYY-MM-DD"
	}
	if req.Time == "" {
		req.Time = now.Format("15:04")
	}
	if !validClock(req.Time) {
		return "time must be HH:MM"
	}
	return ""
}

// Create handles POST /api/exercise. When calories_burned is omitted it is
// estimated from the activity's burn rate and the user's current weight.
func (h *ExerciseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	now := time.Now()
	if msg := req.validate(now); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	if req.CaloriesBurned == 0 {
		weight := 0.0
		if user, err := h.userStore.GetByID(userID); err == nil && user != nil {
			weight = user.CurrentWeight
		}
		req.CaloriesBurned = metrics.BurnedCalories(req.Activity, req.DurationMinutes, weight)
	}

	entry, err := h.exerciseStore.Create(userID, req.Activity, req.DurationMinutes, req.CaloriesBurned, req.Date, req.Time)
	if err != nil {
		h.logger.Error("create exercise entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityExercise, "created", entry.ID, nil))
	h.advanceMissions(userID, entry, now)

	writeJSON(w, http.StatusCreated, entry)
}

// advanceMissions bumps the daily minutes mission and the weekly workout
// counter after an exercise write dated today.
func (h *ExerciseHandler) advanceMissions(userID int64, entry *model.ExerciseEntry, now time.Time) {
	if entry.Date != now.Format(dateLayout) {
		return
	}

	results, err := h.engine.Advance(userID, mission.MetricExerciseMinutes, entry.DurationMinutes, now)
	if err != nil {
		h.logger.Error("advance exercise missions", "error", err)
	} else {
		h.rewards.MissionResults(userID, results)
	}

	results, err = h.engine.Advance(userID, mission.MetricWorkouts, 1, now)
	if err != nil {
		h.logger.Error("advance workout missions", "error", err)
	} else {
		h.rewards.MissionResults(userID, results)
	}
}

// List handles GET /api/exercise with an optional date query parameter.
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var (
		entries []model.ExerciseEntry
		err     error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		if !validDate(date) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		entries, err = h.exerciseStore.ListByUserAndDate(userID, date)
	} else {
		entries, err = h.exerciseStore.ListByUser(userID)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list entries"})
		return
	}
	if entries == nil {
		entries = []model.ExerciseEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Update handles PUT /api/exercise/{id}
func (h *ExerciseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.exerciseStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if existing == nil || existing.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(time.Now()); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	entry, err := h.exerciseStore.Update(id, req.Activity, req.DurationMinutes, req.CaloriesBurned, req.Date, req.Time)
	if err != nil {
		h.logger.Error("update exercise entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update entry"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityExercise, "updated", entry.ID, nil))
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/exercise/{id}
func (h *ExerciseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.exerciseStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if existing == nil || existing.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	if err := h.exerciseStore.Delete(id); err != nil {
		h.logger.Error("delete exercise entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete entry"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityExercise, "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Activities handles GET /api/exercise/activities
func (h *ExerciseHandler) Activities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"activities": metrics.Activities()})
}
