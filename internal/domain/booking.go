package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// bookingTransitions lists the legal forward moves of the booking machine.
// completed and cancelled are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// CanTransitionTo reports whether moving from s to next is legal for
// provider-driven status updates. The payment ledger bypasses this table:
// its only move is the cascade into completed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a service request from a customer to a fundi. HourlyRate is a
// snapshot of the fundi's rate at booking time so later rate edits do not
// change what an existing booking costs.
type Booking struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	CustomerID     int64           `gorm:"index;not null" json:"customer_id"`
	FundiID        int64           `gorm:"index;not null" json:"fundi_id"`
	ServiceID      int64           `gorm:"not null" json:"service_id"`
	Description    string          `gorm:"type:text" json:"description"`
	Address        string          `gorm:"type:text" json:"address"`
	BookingDate    time.Time       `json:"booking_date"`
	EstimatedHours int             `gorm:"default:1" json:"estimated_hours"`
	HourlyRate     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"hourly_rate"`
	Status         BookingStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Customer *User    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Fundi    *Fundi   `json:"fundi,omitempty" gorm:"foreignKey:FundiID"`
	Service  *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (Booking) TableName() string { return "bookings" }

// TotalCost is the server-side amount basis for payments: rate snapshot
// times estimated hours. Callers never supply an amount.
func (b *Booking) TotalCost() decimal.Decimal {
	return b.HourlyRate.Mul(decimal.NewFromInt(int64(b.EstimatedHours)))
}
