package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleFundi    UserRole = "fundi"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID           int64    `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Name         string   `json:"name"`
	PhoneNumber  string   `gorm:"type:varchar(15)" json:"phone_number,omitempty"`
	Address      string   `gorm:"type:text" json:"address,omitempty"`
	Role         UserRole `gorm:"type:varchar(20);default:'customer';index" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
