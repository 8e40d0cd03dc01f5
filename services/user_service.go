package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

// UserService backs the admin user management screens.
type UserService struct {
	DB    *gorm.DB
	Cache Cache
}

func NewUserService(db *gorm.DB, cache Cache) *UserService {
	return &UserService{DB: db, Cache: cache}
}

// Approved lists approved accounts, tables and staff alike.
func (s *UserService) Approved(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.DB.WithContext(ctx).
		Where("approval_status = ?", models.ApprovalApproved).
		Find(&users).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	sortByUsername(users, func(u models.User) string { return u.Username })
	return users, nil
}

// PendingRegistrations lists staff self-registrations, oldest first.
func (s *UserService) PendingRegistrations(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.DB.WithContext(ctx).
		Where("approval_status = ?", models.ApprovalPending).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return users, nil
}

func (s *UserService) Approve(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND approval_status = ?", id, models.ApprovalPending).
		Update("approval_status", models.ApprovalApproved)
	if res.Error != nil {
		return utils.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	utils.InfoLogger.Printf("Registration %s approved", id)
	return nil
}

// Reject deletes a pending registration.
func (s *UserService) Reject(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND approval_status = ?", id, models.ApprovalPending).
		Delete(&models.User{})
	if res.Error != nil {
		return utils.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	utils.InfoLogger.Printf("Registration %s rejected", id)
	return nil
}

// ToggleAdmin promotes an employee to admin or demotes an admin to employee.
// Tables are never promoted.
func (s *UserService) ToggleAdmin(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if actor.UserID == id {
		return nil, utils.ErrForbidden
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		if user.Role() == models.RoleCustomer {
			return utils.ErrForbidden
		}
		wasAdmin := user.IsAdmin
		user.IsAdmin = !wasAdmin
		user.IsEmployee = wasAdmin
		return tx.Model(&user).Updates(map[string]interface{}{
			"is_admin":    user.IsAdmin,
			"is_employee": user.IsEmployee,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if errors.Is(err, utils.ErrForbidden) {
		utils.InfoLogger.Printf("Refused admin toggle on table %s by %s", user.Username, actor.Username)
		return nil, err
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	utils.InfoLogger.Printf("User %s is now %s", user.Username, user.Role())
	return &user, nil
}

// Delete removes an account and its table session. Orders are kept for
// reporting.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.UserID == id {
		return utils.ErrForbidden
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		sess := tx.Where("user_id = ?", id).Delete(&models.ActiveSession{})
		if sess.Error != nil {
			return sess.Error
		}
		if sess.RowsAffected > 0 {
			return recordChange(tx, models.FeedSessions, id, actionDelete)
		}
		return nil
	})
	if err != nil {
		return serviceError(err)
	}
	invalidate(ctx, s.Cache, cacheKeyActiveSessions)
	utils.InfoLogger.Printf("User %s deleted", id)
	return nil
}
