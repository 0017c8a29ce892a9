package domain

import "time"

// Review is one-to-one with a completed booking, written by its customer.
type Review struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	BookingID int64     `gorm:"uniqueIndex;not null" json:"booking_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

func (Review) TableName() string { return "reviews" }
