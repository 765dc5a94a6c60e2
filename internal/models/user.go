package models

import "time"

// User roles. The role claim gates the admin upload routes.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a shopper. Cart and order history live on the user row as
// JSON columns, the same shape the store's tables have always used.
type User struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name              string      `json:"name" validate:"required,min=2,max=100"`
	Email             string      `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Phone             string      `json:"phone" gorm:"uniqueIndex;type:varchar(20)" validate:"required,len=10,numeric"`
	Address           string      `json:"address" validate:"omitempty,max=500"`
	Password          string      `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role              string      `json:"role" gorm:"type:varchar(20);default:customer"`
	Verified          bool        `json:"verified"`
	VerificationToken string      `json:"-" gorm:"type:varchar(36);index"`
	Cart              CartEntries `json:"cart" gorm:"serializer:json"`
	Orders            OrderList   `json:"orders" gorm:"serializer:json"`
	CreatedAt         time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}
