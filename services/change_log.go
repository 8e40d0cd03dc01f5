package services

import (
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"gorm.io/gorm"
)

const (
	actionInsert = "INSERT"
	actionUpdate = "UPDATE"
	actionDelete = "DELETE"
)

// recordChange appends to the change log in the caller's transaction so the
// push feed only announces committed writes.
func recordChange(tx *gorm.DB, feed, recordID, action string) error {
	return tx.Create(&models.DBChange{
		Feed:       feed,
		RecordID:   recordID,
		ActionType: action,
		ChangedAt:  time.Now(),
	}).Error
}
