package models

import "time"

// ActiveSession marks a table as in use. It outlives the customer's logout
// and is only removed when an employee releases the table.
type ActiveSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Username     string    `gorm:"type:varchar(50);not null" json:"username"`
	LoginAt      time.Time `gorm:"not null" json:"login_at"`
	LastActivity time.Time `gorm:"not null" json:"last_activity"`
}
