package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logger"
	"github.com/sirupsen/logrus"
)

// The worker drains the notifications topic and delivers each email over SMTP.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	workerLogger := logger.New(cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, workerLogger)
	defer consumer.Close()

	var sender email.Sender = email.NewSMTPSender(cfg.Email)
	if cfg.Email.SMTPHost == "" {
		workerLogger.Warn("No SMTP host configured, emails will only be logged")
		sender = email.NewLogSender(workerLogger)
	}

	workerLogger.WithFields(logrus.Fields{
		"topic": cfg.Kafka.NotificationsTopic,
		"group": cfg.Kafka.GroupID,
	}).Info("Email worker started")

	err = consumer.ConsumeEmails(ctx, func(ctx context.Context, queued kafka.EmailMessage) error {
		if err := sender.Send(ctx, email.FromQueue(queued)); err != nil {
			return err
		}
		workerLogger.WithFields(logrus.Fields{
			"type": queued.Type,
			"pnr":  queued.ReservationCode,
			"to":   queued.To,
		}).Info("Email delivered")
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		workerLogger.Fatalf("consumer stopped: %v", err)
	}
	workerLogger.Info("Email worker stopped")
}
