package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avaldes-dev/condoreserve/config"
	"github.com/avaldes-dev/condoreserve/internal/bootstrap"
	"github.com/avaldes-dev/condoreserve/internal/cache"
	"github.com/avaldes-dev/condoreserve/internal/kafka"
	"github.com/avaldes-dev/condoreserve/internal/payments"
	"github.com/avaldes-dev/condoreserve/internal/repository"
	"github.com/avaldes-dev/condoreserve/internal/service/availability"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
	"github.com/avaldes-dev/condoreserve/internal/service/checkout"
	"github.com/avaldes-dev/condoreserve/internal/service/reconcile"
	"github.com/avaldes-dev/condoreserve/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Reservation.AreasCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	areaRepo := repository.NewAreaRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	priceRepo := repository.NewPriceRepository(pool)
	chargeRepo := repository.NewChargeRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	billingService := billing.NewBillingService(priceRepo, chargeRepo, cfg.Provider.Currency)
	availabilityService := availability.NewAvailabilityService(areaRepo, reservationRepo, redisCache)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		areaRepo,
		redisCache,
		producer,
		cfg.Kafka.ReservationTopic,
		time.Duration(cfg.Reservation.SlotLockTTLSeconds)*time.Second,
	)
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

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Availability: availabilityService,
		Reservations: reservationService,
		Billing:      billingService,
		Ledger:       billingService,
		Checkout:     broker,
		Reconcile:    reconcileService,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}
