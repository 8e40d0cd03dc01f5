package database

import (
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

// Models lists every table owned by the backend, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ActiveSession{},
		&models.MenuItem{},
		&models.CategoryOrder{},
		&models.Order{},
		&models.OrderItem{},
		&models.WaiterCall{},
		&models.DBChange{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
