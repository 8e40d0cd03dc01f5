package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

type WaiterCallService struct {
	DB *gorm.DB
}

func NewWaiterCallService(db *gorm.DB) *WaiterCallService {
	return &WaiterCallService{DB: db}
}

// Call replaces any pending call of the table with a new one, so a table has
// at most one pending call.
func (s *WaiterCallService) Call(ctx context.Context, actor Actor) (*models.WaiterCall, error) {
	call := models.WaiterCall{
		UserID:    actor.UserID,
		TableName: actor.Username,
		Status:    models.CallPending,
		CreatedAt: time.Now(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND status = ?", actor.UserID, models.CallPending).
			Delete(&models.WaiterCall{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&call).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedWaiterCalls, call.ID, actionInsert)
	})
	if err != nil {
		return nil, utils.NewStorageError(err)
	}

	utils.InfoLogger.Printf("Waiter called by table %s", actor.Username)
	return &call, nil
}

// Pending lists unresolved calls, newest first.
func (s *WaiterCallService) Pending(ctx context.Context) ([]models.WaiterCall, error) {
	calls := make([]models.WaiterCall, 0)
	if err := s.DB.WithContext(ctx).
		Where("status = ?", models.CallPending).
		Order("created_at DESC").
		Find(&calls).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return calls, nil
}

func (s *WaiterCallService) Resolve(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var call models.WaiterCall
		if err := tx.Where("id = ?", id).First(&call).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrNotFound
			}
			return err
		}
		if call.Status == models.CallCompleted {
			return nil
		}
		if err := tx.Model(&call).Update("status", models.CallCompleted).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedWaiterCalls, id, actionUpdate)
	})
	return serviceError(err)
}
