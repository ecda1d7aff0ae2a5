package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/api"
	"github.com/anandwan/awaas-backend/internal/config"
	kafkax "github.com/anandwan/awaas-backend/internal/kafka"
	"github.com/anandwan/awaas-backend/internal/logger"
	"github.com/anandwan/awaas-backend/internal/mailer"
	"github.com/anandwan/awaas-backend/internal/occupancy"
	redisx "github.com/anandwan/awaas-backend/internal/redis"
	"github.com/anandwan/awaas-backend/internal/service/analytics"
	authService "github.com/anandwan/awaas-backend/internal/service/auth"
	"github.com/anandwan/awaas-backend/internal/service/dashboard"
	"github.com/anandwan/awaas-backend/internal/service/donors"
	guestsService "github.com/anandwan/awaas-backend/internal/service/guests"
	mailerService "github.com/anandwan/awaas-backend/internal/service/mailer"
	"github.com/anandwan/awaas-backend/internal/store"
	storeAdmins "github.com/anandwan/awaas-backend/internal/store/admins"
	storeDonors "github.com/anandwan/awaas-backend/internal/store/donors"
	storeGuests "github.com/anandwan/awaas-backend/internal/store/guests"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, "awaas-api")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	adminsRepo := storeAdmins.NewAdminsRepository(db, log)
	guestsRepo := storeGuests.NewGuestsRepository(db, log)
	donorsRepo := storeDonors.NewDonorsRepository(db, log)

	// Create default admin user
	created, err := config.CreateDefaultAdmin(ctx, &cfg, adminsRepo)
	if err != nil {
		log.Error("Failed to create default admin user", zap.Error(err))
	} else if created {
		log.Info("Default admin user created", zap.String("email", cfg.AdminEmail))
	}

	rdb := redisx.NewClient(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Warn("redis unavailable, rate limiting falls back to memory", zap.Error(err))
	}

	producer := kafkax.NewProducer(cfg.Brokers(), cfg.GuestEventsTopic)
	defer producer.Close()

	mailerSender := &mailer.SMTPSender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	mailerSvc := mailerService.NewMailerService(log, mailerSender, nil)

	clock := occupancy.SystemClock{}
	offset := cfg.ReferenceTZOffsetMinutes
	revocations := redisx.NewRevocationStore(rdb)

	services := api.Services{
		Guests:      guestsService.NewGuestsService(log, guestsRepo, producer, clock, offset),
		Auth:        authService.NewAuthService(log, adminsRepo, revocations, redisx.NewOTPStore(rdb, 15*time.Minute), mailerSvc, cfg.JWTSigningSecret, cfg.JWTTTL),
		Dashboard:   dashboard.NewDashboardService(log, clock, offset, guestsRepo),
		Analytics:   analytics.NewAnalyticsService(log, guestsRepo, clock, offset),
		Donors:      donors.NewDonorsService(log, donorsRepo),
		Revocations: revocations,
		RateLimiter: rdb,
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := api.NewEngine(log, cfg.Proxies())
	if err != nil {
		log.Fatal("http engine", zap.Error(err))
	}
	api.RegisterRoutes(r, log, cfg, services)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   20 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
