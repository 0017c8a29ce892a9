package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fundi is a tradesperson profile owned by a user with RoleFundi.
type Fundi struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	UserID          int64           `gorm:"uniqueIndex;not null" json:"user_id"`
	Category        ServiceCategory `gorm:"type:varchar(50);index" json:"category"`
	ExperienceYears int             `gorm:"default:0" json:"experience_years"`
	HourlyRate      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"hourly_rate"`
	Bio             string          `gorm:"type:text" json:"bio,omitempty"`
	IsAvailable     bool            `gorm:"default:true;index" json:"is_available"`
	CreatedAt       time.Time       `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Fundi) TableName() string { return "fundis" }
