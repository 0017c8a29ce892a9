package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodCash        PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodMobileMoney || m == MethodCash
}

// Payment is one-to-one with a booking; the unique index on booking_id is
// what makes two concurrent checkout attempts for the same booking safe.
//
// MerchantRequestID and CheckoutRequestID are assigned by the gateway when a
// mobile-money charge is accepted; the checkout request id is the primary
// lookup key for callbacks and doubles as the provisional transaction id
// until the provider receipt number arrives. CompletedAt is stamped only on
// the transition into completed.
type Payment struct {
	ID                int64           `gorm:"primaryKey" json:"id"`
	BookingID         int64           `gorm:"uniqueIndex;not null" json:"booking_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status            PaymentStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Method            PaymentMethod   `gorm:"type:varchar(20);default:'cash'" json:"method"`
	TransactionID     string          `gorm:"type:varchar(200);index" json:"transaction_id,omitempty"`
	MerchantRequestID string          `gorm:"type:varchar(200);index" json:"merchant_request_id,omitempty"`
	CheckoutRequestID string          `gorm:"type:varchar(200);index" json:"checkout_request_id,omitempty"`
	FailureReason     string          `gorm:"type:text" json:"failure_reason,omitempty"`
	CallbackRawBody   string          `gorm:"type:text" json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`

	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

func (Payment) TableName() string { return "payments" }
