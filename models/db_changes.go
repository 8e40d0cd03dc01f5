package models

import (
	"time"
)

// Change feeds pushed to websocket subscribers.
const (
	FeedOrders      = "orders"
	FeedSessions    = "sessions"
	FeedWaiterCalls = "waiter_calls"
	FeedMenu        = "menu"
)

// DBChange is a change-log row written by services after each mutation and
// drained by the change monitor.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	Feed       string    `gorm:"type:varchar(50);not null;index:idx_feed_action"`
	RecordID   string    `gorm:"type:varchar(36);not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_feed_action"`
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"not null;default:false;index:idx_processed"`
}
