package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
	"github.com/perivale/fitquest/internal/trend"
	"github.com/perivale/fitquest/internal/websocket"
)

type WeightHandler struct {
	weightStore *store.WeightStore
	userStore   *store.UserStore
	engine      *mission.Engine
	rewards     *Rewards
	logger      *slog.Logger
}

func NewWeightHandler(ws *store.WeightStore, us *store.UserStore, engine *mission.Engine, rewards *Rewards, logger *slog.Logger) *WeightHandler {
	return &WeightHandler{weightStore: ws, userStore: us, engine: engine, rewards: rewards, logger: logger}
}

type weightRequest struct {
	WeightKg float64 `json:"weight_kg"`
	Date     string  `json:"date"`
}

// Create handles POST /api/weight
func (h *WeightHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req weightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.WeightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be positive"})
		return
	}
	now := time.Now()
	if req.Date == "" {
		req.Date = now.Format(dateLayout)
	}
	if !validDate(req.Date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	record, err := h.weightStore.Create(userID, req.WeightKg, req.Date)
	if err != nil {
		h.logger.Error("create weight record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record weight"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityWeight, "created", record.ID, nil))

	if record.Date == now.Format(dateLayout) {
		// Latest weigh-in drives exercise burn estimates.
		if err := h.userStore.SetCurrentWeight(userID, record.WeightKg); err != nil {
			h.logger.Error("update current weight", "error", err)
		}
		results, err := h.engine.Advance(userID, mission.MetricWeighIns, 1, now)
		if err != nil {
			h.logger.Error("advance weigh-in missions", "error", err)
		} else {
			h.rewards.MissionResults(userID, results)
		}
	}

	writeJSON(w, http.StatusCreated, record)
}

// List handles GET /api/weight
func (h *WeightHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.weightStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list records"})
		return
	}
	if records == nil {
		records = []model.WeightRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Trend handles GET /api/weight/trend. The direction compares the newest
// record against the previous one; fewer than two records means there is not
// enough data to call a direction.
func (h *WeightHandler) Trend(w http.ResponseWriter, r *http.Request) {
	records, err := h.weightStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list records"})
		return
	}

	obs := make([]trend.Observation, len(records))
	for i, rec := range records {
		obs[i] = trend.Observation{Date: rec.Date, Value: rec.WeightKg}
	}

	resp := map[string]any{
		"direction": trend.Classify(obs),
		"samples":   len(obs),
	}
	if len(obs) >= 2 {
		resp["delta_kg"] = trend.Delta(obs)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/weight/{id}
func (h *WeightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.weightStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get record"})
		return
	}
	if existing == nil || existing.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}

	if err := h.weightStore.Delete(id); err != nil {
		h.logger.Error("delete weight record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete record"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityWeight, "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
