package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/perivale/fitquest/internal/analysis"
	"github.com/perivale/fitquest/internal/backup"
	"github.com/perivale/fitquest/internal/database"
	"github.com/perivale/fitquest/internal/logging"
	"github.com/perivale/fitquest/internal/premium"
	"github.com/perivale/fitquest/internal/push"
	"github.com/perivale/fitquest/internal/server"
)

func main() {
	godotenv.Load()

	logger := logging.Setup(os.Getenv("FITQUEST_LOG_LEVEL"), os.Getenv("FITQUEST_LOG_FORMAT"))

	port := os.Getenv("FITQUEST_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("FITQUEST_DB_PATH")
	if dbPath == "" {
		dbPath = "fitquest.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		SecureCookie: os.Getenv("FITQUEST_SECURE_COOKIE") == "true",
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("FITQUEST_S3_ENDPOINT"),
				Bucket:    os.Getenv("FITQUEST_S3_BUCKET"),
				Region:    os.Getenv("FITQUEST_S3_REGION"),
				AccessKey: os.Getenv("FITQUEST_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("FITQUEST_S3_SECRET_KEY"),
			},
			DBPath:     dbPath,
			Passphrase: os.Getenv("FITQUEST_BACKUP_PASSPHRASE"),
		},
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("FITQUEST_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("FITQUEST_VAPID_PRIVATE_KEY"),
		},
		Stripe: premium.Config{
			SecretKey:     os.Getenv("FITQUEST_STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("FITQUEST_STRIPE_WEBHOOK_SECRET"),
			PriceID:       os.Getenv("FITQUEST_STRIPE_PRICE_ID"),
			AnnualPriceID: os.Getenv("FITQUEST_STRIPE_ANNUAL_PRICE_ID"),
			SuccessURL:    os.Getenv("FITQUEST_STRIPE_SUCCESS_URL"),
			CancelURL:     os.Getenv("FITQUEST_STRIPE_CANCEL_URL"),
		},
		Analysis: analysis.Config{
			APIKey:  os.Getenv("FITQUEST_OPENAI_API_KEY"),
			BaseURL: os.Getenv("FITQUEST_OPENAI_BASE_URL"),
			Model:   os.Getenv("FITQUEST_OPENAI_MODEL"),
		},
	}

	srv := server.New(db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.MissionScheduler().Start(ctx)
	defer srv.MissionScheduler().Stop()

	if srv.BackupManager().Enabled() {
		srv.BackupManager().Start(ctx)
		defer srv.BackupManager().Stop()
	}

	// Hourly housekeeping for sessions and rate limiter buckets.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("fitquest running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
