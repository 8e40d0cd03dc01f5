package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
)

// User is both a staff account and a restaurant table (customer role).
type User struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Phone          string    `gorm:"type:varchar(20)" json:"phone"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	IsEmployee     bool      `gorm:"not null;default:false" json:"is_employee"`
	Slug           string    `gorm:"type:varchar(80);uniqueIndex" json:"slug"`
	ApprovalStatus string    `gorm:"type:varchar(20);not null;default:'approved'" json:"approval_status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u User) Role() Role {
	return RoleFromFlags(u.IsAdmin, u.IsEmployee)
}
