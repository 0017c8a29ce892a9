package booking

import (
	"time"

	"fundi/internal/domain"
)

type CreateBookingRequest struct {
	FundiID        int64     `json:"fundi_id" binding:"required" example:"3"`
	ServiceID      int64     `json:"service_id" binding:"required" example:"1"`
	Description    string    `json:"description" example:"Kitchen sink is leaking"`
	Address        string    `json:"address" binding:"required" example:"Moi Avenue 12, Nairobi"`
	BookingDate    time.Time `json:"booking_date" binding:"required" example:"2026-09-15T09:00:00Z"`
	EstimatedHours int       `json:"estimated_hours" example:"3"`

	// CustomerID comes from the auth context, never from the request body.
	CustomerID int64 `json:"-"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed in_progress completed cancelled" example:"confirmed"`
}

type BookingResponse struct {
	ID             int64     `json:"id"`
	CustomerID     int64     `json:"customer_id"`
	FundiID        int64     `json:"fundi_id"`
	ServiceID      int64     `json:"service_id"`
	ServiceName    string    `json:"service_name,omitempty"`
	Description    string    `json:"description,omitempty"`
	Address        string    `json:"address,omitempty"`
	BookingDate    time.Time `json:"booking_date"`
	EstimatedHours int       `json:"estimated_hours"`
	HourlyRate     string    `json:"hourly_rate"`
	TotalCost      string    `json:"total_cost"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingDetail is the detail view: payment and review are explicit optional
// lookups and stay nil when absent.
type BookingDetail struct {
	Booking BookingResponse `json:"booking"`
	Payment *domain.Payment `json:"payment,omitempty"`
	Review  *domain.Review  `json:"review,omitempty"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID,
		CustomerID:     b.CustomerID,
		FundiID:        b.FundiID,
		ServiceID:      b.ServiceID,
		Description:    b.Description,
		Address:        b.Address,
		BookingDate:    b.BookingDate,
		EstimatedHours: b.EstimatedHours,
		HourlyRate:     b.HourlyRate.StringFixed(2),
		TotalCost:      b.TotalCost().StringFixed(2),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
	if b.Service != nil {
		resp.ServiceName = b.Service.Name
	}
	return resp
}

func toBookingResponses(bs []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for i := range bs {
		out = append(out, toBookingResponse(&bs[i]))
	}
	return out
}

type ErrorResponse struct {
	Error string `json:"error" example:"booking not found"`
}
