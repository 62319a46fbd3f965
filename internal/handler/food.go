package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/perivale/fitquest/internal/analysis"
	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
	"github.com/perivale/fitquest/internal/websocket"
)

type FoodHandler struct {
	foodStore *store.FoodStore
	engine    *mission.Engine
	analyzer  *analysis.Service
	rewards   *Rewards
	logger    *slog.Logger
}

func NewFoodHandler(fs *store.FoodStore, engine *mission.Engine, analyzer *analysis.Service, rewards *Rewards, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{foodStore: fs, engine: engine, analyzer: analyzer, rewards: rewards, logger: logger}
}

type foodRequest struct {
	Name     string  `json:"name"`
	MealType string  `json:"meal_type"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Fat      float64 `json:"fat_g"`
	Carbs    float64 `json:"carbs_g"`
	Fiber    float64 `json:"fiber_g"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
}

func (req *foodRequest) validate(now time.Time) string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Calories < 0 || req.Protein < 0 || req.Fat < 0 || req.Carbs < 0 || req.Fiber < 0 {
		return "nutrition values must not be negative"
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
	if req.MealType == "" {
		hour := now.Hour()
		if t, err := time.Parse("15:04", req.Time); err == nil {
			hour = t.Hour()
		}
		req.MealType = analysis.ClassifyMealType(req.Name, hour)
	}
	if !model.ValidMealType(req.MealType) {
		return "meal_type must be breakfast, lunch, dinner, snack, or drink"
	}
	return ""
}

// Create handles POST /api/food
func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	now := time.Now()
	if msg := req.validate(now); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	entry, err := h.foodStore.Create(userID, req.Name, req.MealType, req.Calories, req.Protein, req.Fat, req.Carbs, req.Fiber, req.Date, req.Time)
	if err != nil {
		h.logger.Error("create food entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityFood, "created", entry.ID, nil))
	h.advanceMissions(userID, entry.Date, now)

	writeJSON(w, http.StatusCreated, entry)
}

// advanceMissions bumps meal-count missions after a food write. Only entries
// for today's date count toward the current period.
func (h *FoodHandler) advanceMissions(userID int64, entryDate string, now time.Time) {
	if entryDate != now.Format(dateLayout) {
		return
	}
	results, err := h.engine.Advance(userID, mission.MetricMeals, 1, now)
	if err != nil {
		h.logger.Error("advance meal missions", "error", err)
		return
	}
	h.rewards.MissionResults(userID, results)
}

// List handles GET /api/food with an optional date query parameter.
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var (
		entries []model.FoodEntry
		err     error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		if !validDate(date) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		entries, err = h.foodStore.ListByUserAndDate(userID, date)
	} else {
		entries, err = h.foodStore.ListByUser(userID)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list entries"})
		return
	}
	if entries == nil {
		entries = []model.FoodEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Update handles PUT /api/food/{id}
func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.foodStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if existing == nil || existing.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(time.Now()); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	entry, err := h.foodStore.Update(id, req.Name, req.MealType, req.Calories, req.Protein, req.Fat, req.Carbs, req.Fiber, req.Date, req.Time)
	if err != nil {
		h.logger.Error("update food entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update entry"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityFood, "updated", entry.ID, nil))
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/food/{id}
func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.foodStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if existing == nil || existing.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	if err := h.foodStore.Delete(id); err != nil {
		h.logger.Error("delete food entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete entry"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityFood, "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type analyzeRequest struct {
	Description string `json:"description"`
	Locale      string `json:"locale"`
}

// Analyze handles POST /api/food/analyze. It returns a structured nutrition
// estimate without creating an entry; the client confirms before saving.
func (h *FoodHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}

	if !h.analyzer.Configured() {
		// No completion API available; classify the meal type locally and
		// let the client fill in the numbers.
		writeJSON(w, http.StatusOK, analysis.Estimate{
			Name:       req.Description,
			MealType:   analysis.ClassifyMealType(req.Description, time.Now().Hour()),
			Confidence: 1,
		})
		return
	}

	est, err := h.analyzer.Analyze(r.Context(), req.Description, req.Locale)
	if errors.Is(err, analysis.ErrUnrecognized) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "not recognized as food"})
		return
	}
	if err != nil {
		h.logger.Error("analyze food", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "analysis unavailable"})
		return
	}

	if est.MealType == "" {
		est.MealType = analysis.ClassifyMealType(est.Name, time.Now().Hour())
	}
	writeJSON(w, http.StatusOK, est)
}
