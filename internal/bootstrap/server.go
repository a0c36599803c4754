package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avaldes-dev/condoreserve/api"
	"github.com/avaldes-dev/condoreserve/config"
	"github.com/avaldes-dev/condoreserve/internal/service/availability"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
	"github.com/avaldes-dev/condoreserve/internal/service/checkout"
	"github.com/avaldes-dev/condoreserve/internal/service/reconcile"
	"github.com/avaldes-dev/condoreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

// Services bundles the use cases the HTTP surface exposes.
type Services struct {
	Availability availability.AvailabilityUseCase
	Reservations reservation.ReservationUseCase
	Billing      billing.PricingUseCase
	Ledger       billing.LedgerUseCase
	Checkout     checkout.CheckoutUseCase
	Reconcile    reconcile.ReconcileUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, svcs Services) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(svcs),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires every handler onto a gin engine. The provider callback
// lives outside the principal middleware; everything else requires a
// requester identity, and mutation of catalogs plus approval requires the
// admin role.
func NewRouter(svcs Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api.NewPaymentHandler(svcs.Reconcile).Register(router.Group("/payments"))

	v1 := router.Group("/v1")
	v1.Use(api.Principal())

	areas := v1.Group("/areas")
	areasAdmin := v1.Group("/areas")
	areasAdmin.Use(api.AdminOnly())
	api.NewAreaHandler(svcs.Availability).Register(areas, areasAdmin)

	reservations := v1.Group("/reservations")
	reservationsAdmin := v1.Group("/reservations")
	reservationsAdmin.Use(api.AdminOnly())
	api.NewReservationHandler(svcs.Reservations, svcs.Reconcile).Register(reservations, reservationsAdmin)

	prices := v1.Group("/prices")
	pricesAdmin := v1.Group("/prices")
	pricesAdmin.Use(api.AdminOnly())
	api.NewPriceHandler(svcs.Billing).Register(prices, pricesAdmin)

	api.NewChargeHandler(svcs.Ledger, svcs.Checkout).Register(v1.Group("/charges"))

	return router
}
