package api

import (
	"net/http"
	"strconv"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
	"github.com/gin-gonic/gin"
)

type PriceHandler struct {
	service billing.PricingUseCase
}

type priceRequest struct {
	Label          string `json:"label"`
	Kind           string `json:"kind"`
	BasePriceCents int64  `json:"base_price_cents"`
	Active         *bool  `json:"active"`
}

type priceResponse struct {
	ID             int64  `json:"id"`
	Label          string `json:"label"`
	Kind           string `json:"kind"`
	BasePriceCents int64  `json:"base_price_cents"`
	Active         bool   `json:"active"`
}

func NewPriceHandler(service billing.PricingUseCase) *PriceHandler {
	return &PriceHandler{service: service}
}

func (h *PriceHandler) Register(router *gin.RouterGroup, admin *gin.RouterGroup) {
	router.GET("/", h.list)
	admin.POST("/", h.create)
	admin.PUT("/:id", h.update)
	admin.POST("/:id/toggle", h.toggle)
	admin.DELETE("/:id", h.delete)
}

func (h *PriceHandler) list(c *gin.Context) {
	prices, err := h.service.ListPrices(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	out := make([]priceResponse, 0, len(prices))
	for i := range prices {
		out = append(out, toPriceResponse(&prices[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PriceHandler) create(c *gin.Context) {
	cfg, ok := bindPrice(c)
	if !ok {
		return
	}
	if err := h.service.CreatePrice(c.Request.Context(), cfg); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toPriceResponse(cfg))
}

func (h *PriceHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	cfg, ok := bindPrice(c)
	if !ok {
		return
	}
	cfg.ID = id
	if err := h.service.UpdatePrice(c.Request.Context(), cfg); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPriceResponse(cfg))
}

func (h *PriceHandler) toggle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.TogglePrice(c.Request.Context(), id, req.Active); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PriceHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.DeletePrice(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func bindPrice(c *gin.Context) (*domain.PriceConfig, bool) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	kind := domain.PriceKind(req.Kind)
	if kind != domain.PriceKindFlat && kind != domain.PriceKindHourly {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be FLAT or HOURLY"})
		return nil, false
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.PriceConfig{
		Label:          req.Label,
		Kind:           kind,
		BasePriceCents: req.BasePriceCents,
		Active:         active,
	}, true
}

func toPriceResponse(p *domain.PriceConfig) priceResponse {
	return priceResponse{
		ID:             p.ID,
		Label:          p.Label,
		Kind:           string(p.Kind),
		BasePriceCents: p.BasePriceCents,
		Active:         p.Active,
	}
}
