package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/config"
	"github.com/anandwan/awaas-backend/internal/logger"
	"github.com/anandwan/awaas-backend/internal/mailer"
	"github.com/anandwan/awaas-backend/internal/occupancy"
	"github.com/anandwan/awaas-backend/internal/service/dashboard"
	"github.com/anandwan/awaas-backend/internal/service/digest"
	mailerService "github.com/anandwan/awaas-backend/internal/service/mailer"
	"github.com/anandwan/awaas-backend/internal/store"
	storeGuests "github.com/anandwan/awaas-backend/internal/store/guests"
)

func main() {
	once := flag.Bool("once", false, "send a single digest and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, "awaas-digest")
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	guestsRepo := storeGuests.NewGuestsRepository(db, log)
	dash := dashboard.NewDashboardService(log, occupancy.SystemClock{}, cfg.ReferenceTZOffsetMinutes, guestsRepo)
	mailerSvc := mailerService.NewMailerService(log, &mailer.SMTPSender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, nil)
	svc := digest.NewDigestService(log, dash, guestsRepo, mailerSvc, cfg.AdminEmail)

	if *once {
		if err := svc.SendDaily(ctx); err != nil {
			log.Fatal("digest failed", zap.Error(err))
		}
		return
	}

	if err := svc.RunScheduled(ctx, cfg.DigestSchedule); err != nil {
		log.Fatal("digest scheduler", zap.Error(err))
	}
}
