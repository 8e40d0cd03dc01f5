package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	ID               string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID           string      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User             *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status           OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Total            float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	Hidden           bool        `gorm:"not null;default:false;index" json:"hidden"`
	PaymentMethod    *string     `gorm:"type:varchar(30)" json:"payment_method,omitempty"`
	Observations     *string     `gorm:"type:text" json:"observations,omitempty"`
	AssignedTo       *string     `gorm:"type:varchar(36);index" json:"assigned_to,omitempty"`
	AssignedEmployee *User       `gorm:"foreignKey:AssignedTo" json:"assigned_employee,omitempty"`
	CreatedAt        time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems       []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`

	DisplayNumber string `gorm:"-" json:"display_number"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (o *Order) AfterFind(tx *gorm.DB) error {
	o.DisplayNumber = DisplayNumber(o.ID)
	return nil
}

// DisplayNumber folds an order id into a 3-digit number shown to humans.
// Collisions are possible; it is never used for lookup.
func DisplayNumber(id string) string {
	hash := 0
	for _, r := range id {
		hash = (hash*31 + int(r)) % 1000
	}
	if hash < 100 {
		hash += 100
	}
	return fmt.Sprintf("%03d", hash)
}
