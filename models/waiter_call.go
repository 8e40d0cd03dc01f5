package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CallPending   = "pending"
	CallCompleted = "completed"
)

type WaiterCall struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_call_user_status" json:"user_id"`
	TableName string    `gorm:"type:varchar(50);not null" json:"table_name"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_call_user_status" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (w *WaiterCall) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
