package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/metrics"
	"github.com/perivale/fitquest/internal/store"
)

// SummaryHandler serves the aggregated calorie and macro views. Aggregation
// is pure; the handler only loads entries and picks the reference day.
type SummaryHandler struct {
	foodStore     *store.FoodStore
	exerciseStore *store.ExerciseStore
	logger        *slog.Logger
}

func NewSummaryHandler(fs *store.FoodStore, es *store.ExerciseStore, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{foodStore: fs, exerciseStore: es, logger: logger}
}

// refDay returns the day the summary is computed for, today unless the date
// query parameter overrides it.
func refDay(r *http.Request) (time.Time, bool) {
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.Parse(dateLayout, date)
		if err != nil {
			return time.Time{}, false
		}
		return day, true
	}
	return time.Now(), true
}

// Daily handles GET /api/summary/daily
func (h *SummaryHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	day, ok := refDay(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	date := day.Format(dateLayout)
	foods, err := h.foodStore.ListByUserAndDate(userID, date)
	if err != nil {
		h.logger.Error("load food entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load entries"})
		return
	}
	exercises, err := h.exerciseStore.ListByUserAndDate(userID, date)
	if err != nil {
		h.logger.Error("load exercise entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load entries"})
		return
	}

	writeJSON(w, http.StatusOK, metrics.Daily(foods, exercises, day))
}

// Weekly handles GET /api/summary/weekly
func (h *SummaryHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	day, ok := refDay(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	foods, err := h.foodStore.ListByUser(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load entries"})
		return
	}
	exercises, err := h.exerciseStore.ListByUser(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load entries"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days": metrics.WeeklySeries(foods, exercises, day),
	})
}

// Macros handles GET /api/summary/macros
func (h *SummaryHandler) Macros(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	day, ok := refDay(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	foods, err := h.foodStore.ListByUser(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load entries"})
		return
	}

	writeJSON(w, http.StatusOK, metrics.MacroAverages(foods, day))
}
