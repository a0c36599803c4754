package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/service/availability"
	"github.com/gin-gonic/gin"
)

type AreaHandler struct {
	service availability.AvailabilityUseCase
}

type areaRequest struct {
	Name          string `json:"name"`
	Capacity      int    `json:"capacity"`
	OpenTime      string `json:"open_time"`
	CloseTime     string `json:"close_time"`
	Status        string `json:"status"`
	PriceConfigID int64  `json:"price_config_id"`
}

type areaResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Capacity      int    `json:"capacity"`
	OpenTime      string `json:"open_time"`
	CloseTime     string `json:"close_time"`
	Status        string `json:"status"`
	PriceConfigID int64  `json:"price_config_id"`
}

type slotResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

type availabilityResponse struct {
	Available bool                  `json:"available"`
	Conflicts []reservationResponse `json:"conflicts"`
}

func NewAreaHandler(service availability.AvailabilityUseCase) *AreaHandler {
	return &AreaHandler{service: service}
}

func (h *AreaHandler) Register(router *gin.RouterGroup, admin *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.checkAvailability)
	router.GET("/:id/slots", h.occupiedSlots)
	admin.POST("/", h.create)
	admin.PUT("/:id", h.update)
}

func (h *AreaHandler) list(c *gin.Context) {
	areas, err := h.service.ListAreas(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	out := make([]areaResponse, 0, len(areas))
	for i := range areas {
		out = append(out, toAreaResponse(&areas[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AreaHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	area, err := h.service.GetArea(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toAreaResponse(area))
}

func (h *AreaHandler) create(c *gin.Context) {
	area, ok := bindArea(c)
	if !ok {
		return
	}
	if err := h.service.CreateArea(c.Request.Context(), area); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toAreaResponse(area))
}

func (h *AreaHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	area, ok := bindArea(c)
	if !ok {
		return
	}
	area.ID = id
	if err := h.service.UpdateArea(c.Request.Context(), area); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toAreaResponse(area))
}

func (h *AreaHandler) checkAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	start, err := domain.ParseMinute(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	end, err := domain.ParseMinute(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), id, date, start, end)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	conflicts := make([]reservationResponse, 0, len(result.Conflicts))
	for i := range result.Conflicts {
		conflicts = append(conflicts, toReservationResponse(&result.Conflicts[i]))
	}
	c.JSON(http.StatusOK, availabilityResponse{Available: result.Available, Conflicts: conflicts})
}

func (h *AreaHandler) occupiedSlots(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
		return
	}

	slots, err := h.service.OccupiedSlots(c.Request.Context(), id, from, to)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{
			Date:      s.Date.Format("2006-01-02"),
			StartTime: domain.FormatMinute(s.StartMinute),
			EndTime:   domain.FormatMinute(s.EndMinute),
			Status:    string(s.Status),
		})
	}
	c.JSON(http.StatusOK, out)
}

func bindArea(c *gin.Context) (*domain.CommonArea, bool) {
	var req areaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	open, err := domain.ParseMinute(req.OpenTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid open_time"})
		return nil, false
	}
	closeMin, err := domain.ParseMinute(req.CloseTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid close_time"})
		return nil, false
	}
	switch domain.AreaStatus(req.Status) {
	case "", domain.AreaStatusAvailable, domain.AreaStatusMaintenance, domain.AreaStatusClosed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be AVAILABLE, MAINTENANCE or CLOSED"})
		return nil, false
	}
	return &domain.CommonArea{
		Name:          req.Name,
		Capacity:      req.Capacity,
		OpenMinute:    open,
		CloseMinute:   closeMin,
		Status:        domain.AreaStatus(req.Status),
		PriceConfigID: req.PriceConfigID,
	}, true
}

func toAreaResponse(a *domain.CommonArea) areaResponse {
	return areaResponse{
		ID:            a.ID,
		Name:          a.Name,
		Capacity:      a.Capacity,
		OpenTime:      domain.FormatMinute(a.OpenMinute),
		CloseTime:     domain.FormatMinute(a.CloseMinute),
		Status:        string(a.Status),
		PriceConfigID: a.PriceConfigID,
	}
}
