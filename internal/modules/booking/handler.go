package booking

import (
	"errors"
	"net/http"
	"strconv"

	"fundi/internal/domain"
	"fundi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/my", h.ListMine)
	rg.GET("/bookings/assigned", h.ListAssigned)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
}

// CreateBooking godoc
// @Summary      Book a fundi
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateBookingRequest true "Booking payload"
// @Success      201 {object} BookingResponse
// @Failure      400 {object} ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	req.CustomerID = c.GetInt64("user_id")

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrFundiNotFound), errors.Is(err, ErrServiceNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrPastBookingDate), errors.Is(err, ErrInvalidHours):
			response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrFundiUnavailable):
			response.Error(c, http.StatusConflict, "FUNDI_UNAVAILABLE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusCreated, toBookingResponse(b))
}

// GetBooking godoc
// @Summary      Booking detail with payment and review
// @Tags         Bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Booking ID"
// @Success      200 {object} BookingDetail
// @Failure      404 {object} ErrorResponse
// @Router       /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrNotAllowed):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// UpdateStatus godoc
// @Summary      Move a booking through its lifecycle
// @Description  Fundis confirm, start and complete their bookings; customers may cancel while the booking is not terminal
// @Tags         Bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Booking ID"
// @Param        body body UpdateStatusRequest true "Target status"
// @Success      200 {object} BookingResponse
// @Failure      409 {object} ErrorResponse
// @Router       /bookings/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), id, c.GetInt64("user_id"), domain.BookingStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrNotAllowed):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
		case errors.Is(err, ErrInvalidStatus):
			response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrInvalidTransition):
			response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusOK, toBookingResponse(b))
}

// ListMine godoc
// @Summary      Bookings the caller made as a customer
// @Tags         Bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} BookingResponse
// @Router       /bookings/my [get]
func (h *Handler) ListMine(c *gin.Context) {
	bs, err := h.service.ListForCustomer(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, toBookingResponses(bs))
}

// ListAssigned godoc
// @Summary      Bookings assigned to the caller's fundi profile
// @Tags         Bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} BookingResponse
// @Router       /bookings/assigned [get]
func (h *Handler) ListAssigned(c *gin.Context) {
	bs, err := h.service.ListForFundi(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		if errors.Is(err, ErrFundiNotFound) {
			response.Error(c, http.StatusForbidden, "NOT_A_FUNDI", "No fundi profile for this account")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	response.Success(c, http.StatusOK, toBookingResponses(bs))
}
