package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
	"github.com/avaldes-dev/condoreserve/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type ChargeHandler struct {
	ledger billing.LedgerUseCase
	broker checkout.CheckoutUseCase
}

type chargeResponse struct {
	ID              int64  `json:"id"`
	ReservationID   *int64 `json:"reservation_id,omitempty"`
	PropertyID      *int64 `json:"property_id,omitempty"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	DueDate         string `json:"due_date,omitempty"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	IssuedAt        string `json:"issued_at"`
	PaidAt          string `json:"paid_at,omitempty"`
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	ExpiresAt   string `json:"expires_at"`
}

func NewChargeHandler(ledger billing.LedgerUseCase, broker checkout.CheckoutUseCase) *ChargeHandler {
	return &ChargeHandler{ledger: ledger, broker: broker}
}

func (h *ChargeHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
	router.POST("/:id/checkout", h.openSession)
}

func (h *ChargeHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	charge, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toChargeResponse(charge, time.Now()))
}

func (h *ChargeHandler) openSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	session, err := h.broker.OpenSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{
		SessionID:   session.ID,
		AmountCents: session.AmountCents,
		Currency:    session.Currency,
		ExpiresAt:   session.ExpiresAt.Format(time.RFC3339),
	})
}

func toChargeResponse(ch *domain.Charge, now time.Time) chargeResponse {
	out := chargeResponse{
		ID:              ch.ID,
		ReservationID:   ch.ReservationID,
		PropertyID:      ch.PropertyID,
		AmountCents:     ch.AmountCents,
		Currency:        ch.Currency,
		Status:          string(ch.Status),
		EffectiveStatus: string(domain.EffectiveStatus(ch, now)),
		IssuedAt:        ch.IssuedAt.Format(time.RFC3339),
	}
	if ch.DueDate != nil {
		out.DueDate = ch.DueDate.Format(time.RFC3339)
	}
	if ch.PaidAt != nil {
		out.PaidAt = ch.PaidAt.Format(time.RFC3339)
	}
	return out
}
