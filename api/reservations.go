package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/service/reconcile"
	"github.com/avaldes-dev/condoreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service   reservation.ReservationUseCase
	reconcile reconcile.ReconcileUseCase
}

type createReservationRequest struct {
	AreaID    int64  `json:"area_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type reservationResponse struct {
	ID             int64  `json:"id"`
	AreaID         int64  `json:"area_id"`
	RequesterID    int64  `json:"requester_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Status         string `json:"status"`
	ChargeID       *int64 `json:"charge_id,omitempty"`
	NoCharge       bool   `json:"no_charge,omitempty"`
	RefundRequired bool   `json:"refund_required,omitempty"`
}

func NewReservationHandler(service reservation.ReservationUseCase, rec reconcile.ReconcileUseCase) *ReservationHandler {
	return &ReservationHandler{service: service, reconcile: rec}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup, admin *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/cancel", h.cancel)
	admin.POST("/:id/approve", h.approve)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	start, err := domain.ParseMinute(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
		return
	}
	end, err := domain.ParseMinute(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time"})
		return
	}

	res, err := h.service.Create(c.Request.Context(), principalFrom(c), reservation.CreateInput{
		AreaID:      req.AreaID,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toReservationResponse(res))
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h *ReservationHandler) approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res, err := h.reconcile.Approve(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res, err := h.reconcile.Cancel(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:             r.ID,
		AreaID:         r.AreaID,
		RequesterID:    r.RequesterID,
		Date:           r.Date.Format("2006-01-02"),
		StartTime:      domain.FormatMinute(r.StartMinute),
		EndTime:        domain.FormatMinute(r.EndMinute),
		Status:         string(r.Status),
		ChargeID:       r.ChargeID,
		NoCharge:       r.NoCharge,
		RefundRequired: r.RefundRequired,
	}
}
