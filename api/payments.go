package api

import (
	"errors"
	"net/http"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/service/reconcile"
	"github.com/gin-gonic/gin"
)

// PaymentHandler receives the provider's confirmation webhook. The
// endpoint sits outside the principal middleware: the provider
// authenticates with its own signature scheme terminated upstream.
type PaymentHandler struct {
	service reconcile.ReconcileUseCase
}

type confirmationRequest struct {
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	ProviderRef string `json:"provider_reference"`
}

func NewPaymentHandler(service reconcile.ReconcileUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/callback", h.confirm)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	var req confirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SessionID == "" || req.ProviderRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and provider_reference are required"})
		return
	}

	result := domain.PaymentResultDeclined
	if req.Status == string(domain.PaymentResultSuccess) {
		result = domain.PaymentResultSuccess
	}

	err := h.service.HandleConfirmation(c.Request.Context(), req.SessionID, result, req.ProviderRef)
	if err != nil {
		// the provider redelivers on non-2xx. A duplicate reference is
		// already queued for manual review, so acknowledge it to stop
		// the redelivery loop.
		if errors.Is(err, domain.ErrDuplicatePayment) {
			c.JSON(http.StatusOK, gin.H{"received": true, "review": "duplicate_payment"})
			return
		}
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
