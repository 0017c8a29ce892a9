package admin

import (
	"errors"
	"net/http"
	"strconv"

	"fundi/internal/domain"
	"fundi/internal/modules/payment"
	"fundi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type SetPaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed failed refunded" example:"refunded"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes expects rg to already carry the admin role middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/dashboard", h.GetDashboard)
	rg.PATCH("/admin/payments/:id/status", h.SetPaymentStatus)
}

// GetDashboard godoc
// @Summary      Marketplace counters for operators
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} Dashboard
// @Router       /admin/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, d)
}

// SetPaymentStatus godoc
// @Summary      Manually override a payment's status
// @Description  Operator escape hatch for lost callbacks and refunds; moving into completed also cascades the booking
// @Tags         Admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        body body SetPaymentStatusRequest true "Target status"
// @Success      200 {object} domain.Payment
// @Failure      404 {object} map[string]any
// @Router       /admin/payments/{id}/status [patch]
func (h *Handler) SetPaymentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}
	var req SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	p, err := h.service.SetPaymentStatus(c.Request.Context(), id, domain.PaymentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, payment.ErrInvalidStatus):
			response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, p)
}
