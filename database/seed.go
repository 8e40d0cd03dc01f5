package database

import (
	"errors"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin when no admin exists yet. Without it
// a fresh database has nobody able to approve registrations.
func SeedAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("is_admin = ?", true).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:       username,
		PasswordHash:   hash,
		IsAdmin:        true,
		Slug:           utils.GenerateSlug(username),
		ApprovalStatus: models.ApprovalApproved,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Bootstrap admin %q created", username)
	return nil
}
