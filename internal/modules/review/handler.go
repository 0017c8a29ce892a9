package review

import (
	"errors"
	"net/http"

	"fundi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateReviewRequest struct {
	BookingID int64  `json:"booking_id" binding:"required" example:"42"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
	Comment   string `json:"comment" example:"Fixed the leak in under an hour"`

	// CustomerID comes from the auth context, never from the request body.
	CustomerID int64 `json:"-"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.CreateReview)
}

// CreateReview godoc
// @Summary      Review a completed booking
// @Tags         Reviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateReviewRequest true "Review payload"
// @Success      201 {object} domain.Review
// @Failure      409 {object} map[string]any
// @Router       /reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	req.CustomerID = c.GetInt64("user_id")

	rv, err := h.service.CreateReview(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrNotAllowed):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
		case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrBookingNotCompleted):
			response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrAlreadyReviewed):
			response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
		return
	}
	response.Success(c, http.StatusCreated, rv)
}
