package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/config"
	kafkax "github.com/anandwan/awaas-backend/internal/kafka"
	"github.com/anandwan/awaas-backend/internal/logger"
	"github.com/anandwan/awaas-backend/internal/mailer"
	mailerService "github.com/anandwan/awaas-backend/internal/service/mailer"
	workerService "github.com/anandwan/awaas-backend/internal/service/worker"
	"github.com/anandwan/awaas-backend/internal/whatsapp"
	"github.com/anandwan/awaas-backend/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, "awaas-worker")
	defer func() { _ = log.Sync() }()
	log.Info("worker starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mailerSender := &mailer.SMTPSender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	var wa whatsapp.Sender
	twilio := whatsapp.NewTwilioSender(cfg.TwilioBaseURL, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
	if twilio.Configured() {
		wa = twilio
	} else {
		log.Warn("twilio not configured, WhatsApp notifications disabled")
	}

	mailerSvc := mailerService.NewMailerService(log, mailerSender, wa)
	notifySvc := workerService.NewNotifyService(log, mailerSvc, cfg.AdminEmail)

	consumer := kafkax.NewConsumer(cfg.Brokers(), "awaas-notifier", cfg.GuestEventsTopic)
	defer consumer.Close()
	dlq := kafkax.NewProducer(cfg.Brokers(), cfg.GuestEventsTopic+"-dlq")
	defer dlq.Close()

	n := worker.NewNotifier(log, notifySvc, consumer, dlq, cfg.MaxWorkerRoutineCount)
	if err := n.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("notifier stopped", zap.Error(err))
	}
	log.Info("worker stopped")
}
