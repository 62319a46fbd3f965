package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/perivale/fitquest/internal/analysis"
	"github.com/perivale/fitquest/internal/backup"
	"github.com/perivale/fitquest/internal/handler"
	"github.com/perivale/fitquest/internal/middleware"
	"github.com/perivale/fitquest/internal/mission"
	"github.com/perivale/fitquest/internal/premium"
	"github.com/perivale/fitquest/internal/push"
	"github.com/perivale/fitquest/internal/store"
	ws "github.com/perivale/fitquest/internal/websocket"
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	SecureCookie bool
	Backup       backup.Config
	Push         push.Config
	Stripe       premium.Config
	Analysis     analysis.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	foodH         *handler.FoodHandler
	exerciseH     *handler.ExerciseHandler
	weightH       *handler.WeightHandler
	summaryH      *handler.SummaryHandler
	missionH      *handler.MissionHandler
	storefrontH   *handler.StorefrontHandler
	premiumH      *handler.PremiumHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	engine        *mission.Engine
	pushService   *push.Service
	pushScheduler *push.Scheduler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	foodStore := store.NewFoodStore(db)
	exerciseStore := store.NewExerciseStore(db)
	weightStore := store.NewWeightStore(db)
	missionStore := store.NewMissionStore(db)
	itemStore := store.NewStoreItemStore(db)
	badgeStore := store.NewBadgeStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)
	codeStore := store.NewPremiumCodeStore(db)

	engine := mission.NewEngine(missionStore, logger.With("component", "mission"))

	// Push notification service + mission renewal scheduler
	pushLogger := logger.With("component", "push")
	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}
	pushSched := push.NewScheduler(pushSvc, engine, userStore, missionStore, pushStore, pushLogger)

	rewards := handler.NewRewards(hub, pushSched, badgeStore, logger.With("component", "rewards"))

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"))
	stripeClient := premium.NewClient(cfg.Stripe)
	analyzer := analysis.NewService(cfg.Analysis)

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, cfg.SecureCookie, logger.With("component", "auth")),
		foodH:         handler.NewFoodHandler(foodStore, engine, analyzer, rewards, logger.With("component", "food")),
		exerciseH:     handler.NewExerciseHandler(exerciseStore, userStore, engine, rewards, logger.With("component", "exercise")),
		weightH:       handler.NewWeightHandler(weightStore, userStore, engine, rewards, logger.With("component", "weight")),
		summaryH:      handler.NewSummaryHandler(foodStore, exerciseStore, logger.With("component", "summary")),
		missionH:      handler.NewMissionHandler(engine, missionStore, rewards, logger.With("component", "mission_handler")),
		storefrontH:   handler.NewStorefrontHandler(itemStore, badgeStore, rewards, logger.With("component", "storefront")),
		premiumH:      handler.NewPremiumHandler(stripeClient, userStore, codeStore, logger.With("component", "premium")),
		pushH:         pushH,
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		engine:        engine,
		pushService:   pushSvc,
		pushScheduler: pushSched,
		backupManager: backupMgr,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// MissionScheduler returns the mission renewal scheduler.
func (s *Server) MissionScheduler() *push.Scheduler {
	return s.pushScheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/premium/webhook", s.premiumH.Webhook)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session + profile
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateProfile)

	// Food log
	mux.HandleFunc("POST /api/food", s.foodH.Create)
	mux.HandleFunc("GET /api/food", s.foodH.List)
	mux.HandleFunc("PUT /api/food/{id}", s.foodH.Update)
	mux.HandleFunc("DELETE /api/food/{id}", s.foodH.Delete)
	mux.Handle("POST /api/food/analyze", middleware.RequirePremium(http.HandlerFunc(s.foodH.Analyze)))

	// Exercise log
	mux.HandleFunc("POST /api/exercise", s.exerciseH.Create)
	mux.HandleFunc("GET /api/exercise", s.exerciseH.List)
	mux.HandleFunc("PUT /api/exercise/{id}", s.exerciseH.Update)
	mux.HandleFunc("DELETE /api/exercise/{id}", s.exerciseH.Delete)
	mux.HandleFunc("GET /api/exercise/activities", s.exerciseH.Activities)

	// Weight log + trend
	mux.HandleFunc("POST /api/weight", s.weightH.Create)
	mux.HandleFunc("GET /api/weight", s.weightH.List)
	mux.HandleFunc("DELETE /api/weight/{id}", s.weightH.Delete)
	mux.HandleFunc("GET /api/weight/trend", s.weightH.Trend)

	// Summaries
	mux.HandleFunc("GET /api/summary/daily", s.summaryH.Daily)
	mux.HandleFunc("GET /api/summary/weekly", s.summaryH.Weekly)
	mux.HandleFunc("GET /api/summary/macros", s.summaryH.Macros)

	// Missions
	mux.HandleFunc("GET /api/missions", s.missionH.List)
	mux.HandleFunc("POST /api/missions/{id}/progress", s.missionH.ReportProgress)
	mux.HandleFunc("GET /api/missions/history", s.missionH.History)

	// Storefront + badges
	mux.HandleFunc("GET /api/store/items", s.storefrontH.ListItems)
	mux.HandleFunc("POST /api/store/items/{id}/purchase", s.storefrontH.Purchase)
	mux.HandleFunc("GET /api/store/purchases", s.storefrontH.ListPurchases)
	mux.HandleFunc("GET /api/badges", s.storefrontH.ListBadges)
	mux.HandleFunc("GET /api/badges/mine", s.storefrontH.MyBadges)

	// Premium
	mux.HandleFunc("POST /api/premium/checkout", s.premiumH.CreateCheckoutSession)
	mux.HandleFunc("POST /api/premium/portal", s.premiumH.BillingPortal)
	mux.HandleFunc("POST /api/premium/redeem", s.premiumH.RedeemCode)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// Backups
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.RunNow)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// WebSocket sync
	mux.HandleFunc("GET /api/ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "ws_handler")))
}
