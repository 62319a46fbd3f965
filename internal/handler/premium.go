package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v84"

	"github.com/perivale/fitquest/internal/auth"
	"github.com/perivale/fitquest/internal/premium"
	"github.com/perivale/fitquest/internal/store"
)

type PremiumHandler struct {
	stripeClient *premium.Client
	userStore    *store.UserStore
	codeStore    *store.PremiumCodeStore
	logger       *slog.Logger
}

func NewPremiumHandler(sc *premium.Client, us *store.UserStore, cs *store.PremiumCodeStore, logger *slog.Logger) *PremiumHandler {
	return &PremiumHandler{stripeClient: sc, userStore: us, codeStore: cs, logger: logger}
}

type checkoutRequest struct {
	Interval string `json:"interval"`
}

// CreateCheckoutSession handles POST /api/premium/checkout
func (h *PremiumHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if !h.stripeClient.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "billing not configured"})
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Interval == "" {
		req.Interval = "monthly"
	}

	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}

	customerID := user.StripeCustomer
	if customerID == "" {
		customerID, err = h.stripeClient.CreateCustomer(user.Email)
		if err != nil {
			h.logger.Error("create stripe customer", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create customer"})
			return
		}
		if err := h.userStore.SetStripeCustomer(user.ID, customerID); err != nil {
			h.logger.Error("save stripe customer", "error", err)
		}
	}

	url, err := h.stripeClient.CreateCheckoutSession(customerID, h.stripeClient.PriceIDForInterval(req.Interval))
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create checkout session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// BillingPortal handles POST /api/premium/portal
func (h *PremiumHandler) BillingPortal(w http.ResponseWriter, r *http.Request) {
	if !h.stripeClient.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "billing not configured"})
		return
	}

	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}
	if user.StripeCustomer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no billing account"})
		return
	}

	returnURL := r.Header.Get("Referer")
	if returnURL == "" {
		returnURL = "/settings"
	}

	url, err := h.stripeClient.CreateBillingPortalSession(user.StripeCustomer, returnURL)
	if err != nil {
		h.logger.Error("create portal session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create portal session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Webhook handles POST /api/premium/webhook
func (h *PremiumHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	event, err := h.stripeClient.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *PremiumHandler) handleCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("webhook: unmarshal checkout session", "error", err)
		return
	}
	if sess.Customer == nil {
		h.logger.Error("webhook: checkout session missing customer")
		return
	}

	user, err := h.userStore.GetByStripeCustomer(sess.Customer.ID)
	if err != nil {
		h.logger.Error("webhook: get user by customer", "error", err)
		return
	}
	if user == nil && sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		user, err = h.userStore.GetByEmail(strings.ToLower(sess.CustomerDetails.Email))
		if err != nil {
			h.logger.Error("webhook: get user by email", "error", err)
			return
		}
		if user != nil {
			h.userStore.SetStripeCustomer(user.ID, sess.Customer.ID)
		}
	}
	if user == nil {
		h.logger.Error("webhook: no user for checkout", "customer", sess.Customer.ID)
		return
	}

	if err := h.userStore.SetPremium(user.ID, time.Now()); err != nil {
		h.logger.Error("webhook: set premium", "error", err)
		return
	}
	h.logger.Info("premium activated", "user_id", user.ID)
}

func (h *PremiumHandler) handleSubscriptionDeleted(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("webhook: unmarshal subscription", "error", err)
		return
	}
	if sub.Customer == nil {
		return
	}

	user, err := h.userStore.GetByStripeCustomer(sub.Customer.ID)
	if err != nil || user == nil {
		return
	}

	if err := h.userStore.ClearPremium(user.ID); err != nil {
		h.logger.Error("webhook: clear premium", "error", err)
		return
	}
	h.logger.Info("premium canceled", "user_id", user.ID)
}

type redeemRequest struct {
	Code string `json:"code"`
}

// RedeemCode handles POST /api/premium/redeem. Codes grant premium without
// Stripe; each code can be claimed exactly once.
func (h *PremiumHandler) RedeemCode(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	code, err := h.codeStore.GetByCode(req.Code)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up code"})
		return
	}
	if code == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid code"})
		return
	}

	err = h.codeStore.Redeem(req.Code, userID)
	if errors.Is(err, store.ErrCodeUsed) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "code already used"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to redeem code"})
		return
	}

	user, err := h.userStore.GetByID(userID)
	if err != nil || user == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}
