package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
	"github.com/perivale/fitquest/internal/websocket"
)

type StorefrontHandler struct {
	itemStore  *store.StoreItemStore
	badgeStore *store.BadgeStore
	rewards    *Rewards
	logger     *slog.Logger
}

func NewStorefrontHandler(is *store.StoreItemStore, bs *store.BadgeStore, rewards *Rewards, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{itemStore: is, badgeStore: bs, rewards: rewards, logger: logger}
}

// ListItems handles GET /api/store/items
func (h *StorefrontHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.StoreItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Purchase handles POST /api/store/items/{id}/purchase. The point debit is
// conditional on a sufficient balance, so concurrent purchases can never
// overdraw.
func (h *StorefrontHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.itemStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil || !item.Active {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	purchase, err := h.itemStore.Purchase(item.ID, userID, item.PointCost)
	if errors.Is(err, store.ErrInsufficientPoints) {
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": "not enough points"})
		return
	}
	if err != nil {
		h.logger.Error("purchase item", "item_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "purchase failed"})
		return
	}

	h.rewards.Sync(userID, websocket.NewMessage(websocket.EntityPurchase, "created", purchase.ID, map[string]any{
		"receipt": purchase.Receipt,
	}))
	writeJSON(w, http.StatusCreated, purchase)
}

// ListPurchases handles GET /api/store/purchases
func (h *StorefrontHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.itemStore.ListPurchasesByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list purchases"})
		return
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

// ListBadges handles GET /api/badges
func (h *StorefrontHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.badgeStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list badges"})
		return
	}
	if badges == nil {
		badges = []model.Badge{}
	}
	writeJSON(w, http.StatusOK, badges)
}

// MyBadges handles GET /api/badges/mine
func (h *StorefrontHandler) MyBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.badgeStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list badges"})
		return
	}
	if badges == nil {
		badges = []model.Badge{}
	}
	writeJSON(w, http.StatusOK, badges)
}
