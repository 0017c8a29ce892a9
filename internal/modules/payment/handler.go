package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fundi/internal/mpesa"
	"fundi/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.CreatePayment)
	rg.GET("/payments/:id/status", h.QueryStatus)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/mpesa/callback", h.MpesaCallback)
}

// CreatePayment godoc
// @Summary      Pay for a booking
// @Description  Creates the booking's payment: cash completes immediately, mobile money sends an STK push to the customer's phone
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreatePaymentRequest true "Payment payload"
// @Success      201 {object} PaymentResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	req.UserID = c.GetInt64("user_id")

	result, err := h.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.writeCreateError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toPaymentResponse(result.Payment, result.CustomerMessage))
}

func (h *Handler) writeCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotAllowed):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrDuplicatePayment):
		response.Error(c, http.StatusConflict, "DUPLICATE_PAYMENT", err.Error())
	case errors.Is(err, ErrMissingPhone), errors.Is(err, ErrInvalidMethod):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrCallbackUnreachable):
		response.Error(c, http.StatusServiceUnavailable, "CALLBACK_UNREACHABLE", err.Error())
	default:
		h.writeGatewayError(c, err)
	}
}

func (h *Handler) writeGatewayError(c *gin.Context, err error) {
	var ge *mpesa.GatewayError
	if !errors.As(err, &ge) {
		h.loggerf("level=error msg=create payment failed err=%v", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	switch ge.Kind {
	case mpesa.KindProductionSafety:
		response.Error(c, http.StatusInternalServerError, "PRODUCTION_SAFETY", ge.Message)
	case mpesa.KindAuthFailed:
		response.Error(c, http.StatusBadGateway, "GATEWAY_AUTH_FAILED", "Authentication with the payment gateway failed")
	case mpesa.KindInvalidRequest:
		response.Error(c, http.StatusBadRequest, "GATEWAY_REJECTED", ge.Message)
	default:
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "The payment gateway is unavailable, try again later")
	}
}

// MpesaCallback godoc
// @Summary      M-Pesa payment webhook
// @Description  Receives asynchronous charge results from the provider; public by necessity, always acked with a ResultCode body
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Success      200 {object} Ack
// @Failure      400 {object} Ack
// @Failure      500 {object} Ack
// @Router       /payments/mpesa/callback [post]
func (h *Handler) MpesaCallback(c *gin.Context) {
	rawBody, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(strings.NewReader(string(rawBody)))
	h.loggerf("level=info msg=mpesa callback received raw_body=%s", string(rawBody))

	var env CallbackEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		// Negative ack, not a server error: the provider retries on 5xx and
		// a permanently malformed payload would retry forever.
		h.loggerf("level=warn msg=malformed mpesa callback err=%v", err)
		c.JSON(http.StatusBadRequest, Ack{ResultCode: 1, ResultDesc: "Invalid JSON"})
		return
	}

	ack, err := h.service.HandleCallback(c.Request.Context(), env, string(rawBody))
	if err != nil {
		// Genuine internal fault; 500 tells the provider to retry later.
		h.loggerf("level=error msg=mpesa callback processing failed err=%v", err)
		c.JSON(http.StatusInternalServerError, ack)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// QueryStatus godoc
// @Summary      Query charge status at the gateway
// @Description  Best-effort provider-side status for a pending mobile money payment; the callback remains authoritative
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {object} mpesa.ChargeStatus
// @Failure      404 {object} ErrorResponse
// @Router       /payments/{id}/status [get]
func (h *Handler) QueryStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID")
		return
	}

	status, err := h.service.QueryStatus(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrNotQueryable):
			response.Error(c, http.StatusBadRequest, "NOT_QUERYABLE", err.Error())
		default:
			h.writeGatewayError(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, status)
}
