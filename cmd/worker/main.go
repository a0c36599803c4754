package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avaldes-dev/condoreserve/config"
	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/kafka"
	"github.com/avaldes-dev/condoreserve/internal/notify"
	"github.com/avaldes-dev/condoreserve/internal/payments"
	"github.com/avaldes-dev/condoreserve/internal/repository"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
	"github.com/avaldes-dev/condoreserve/internal/service/checkout"
	"github.com/avaldes-dev/condoreserve/internal/service/reconcile"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	areaRepo := repository.NewAreaRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	priceRepo := repository.NewPriceRepository(pool)
	chargeRepo := repository.NewChargeRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	billingService := billing.NewBillingService(priceRepo, chargeRepo, cfg.Provider.Currency)
	broker := checkout.NewBroker(
		sessionRepo,
		billingService,
		payments.NewClient(cfg.Provider),
		time.Duration(cfg.Reservation.SessionTTLHours)*time.Hour,
	)
	reconcileService := reconcile.NewService(
		reservationRepo,
		areaRepo,
		billingService,
		billingService,
		broker,
		producer,
		cfg.Kafka.ReservationTopic,
		cfg.Reservation.ChargeDueDays,
		reconcile.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	confirmations := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ConfirmationsTopic)
	defer confirmations.Close()

	go func() {
		if err := confirmations.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var conf kafka.PaymentConfirmation
			if err := json.Unmarshal(msg.Value, &conf); err != nil {
				log.Printf("decode confirmation error: %v", err)
				return nil
			}
			result := domainResult(conf.Status)
			if err := reconcileService.HandleConfirmation(ctx, conf.SessionID, result, conf.ProviderRef); err != nil {
				// duplicates and the like are already queued for review;
				// committing the offset stops redelivery
				log.Printf("confirmation for session %s not applied: %v", conf.SessionID, err)
			}
			return nil
		}); err != nil {
			log.Printf("confirmations consumer stopped: %v", err)
		}
	}()

	notifications := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer notifications.Close()

	sender := notify.NewSender()

	go func() {
		if err := notifications.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ReservationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return sender.Send(ctx, event)
		}); err != nil {
			log.Printf("notifications consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(cfg.Worker.SweepInterval())
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			now := time.Now()
			report, err := reconcileService.SweepOverdue(ctx, now)
			if err != nil {
				log.Printf("overdue sweep error: %v", err)
			} else if report.Overdue > 0 {
				log.Printf("overdue sweep: %d of %d pending charges past due", report.Overdue, report.Checked)
			}
			pruned, err := broker.PruneSessions(ctx, now)
			if err != nil {
				log.Printf("prune sessions error: %v", err)
			} else if pruned > 0 {
				log.Printf("pruned %d expired checkout sessions", pruned)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

func domainResult(status string) domain.PaymentResult {
	if status == string(domain.PaymentResultSuccess) {
		return domain.PaymentResultSuccess
	}
	return domain.PaymentResultDeclined
}
