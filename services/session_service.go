package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionService tracks which tables are occupied. A session row is created
// on table login or reservation and removed only by an employee release.
type SessionService struct {
	DB    *gorm.DB
	Cache Cache
}

func NewSessionService(db *gorm.DB, cache Cache) *SessionService {
	return &SessionService{DB: db, Cache: cache}
}

// StartSession upserts the session for user, refreshing both timestamps.
func (s *SessionService) StartSession(ctx context.Context, user *models.User) (*models.ActiveSession, error) {
	now := time.Now()
	session := models.ActiveSession{
		UserID:       user.ID,
		Username:     user.Username,
		LoginAt:      now,
		LastActivity: now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "login_at", "last_activity"}),
		}).Create(&session).Error; err != nil {
			return err
		}
		return recordChange(tx, models.FeedSessions, user.ID, actionUpdate)
	})
	if err != nil {
		return nil, utils.NewStorageError(err)
	}

	invalidate(ctx, s.Cache, cacheKeyActiveSessions)
	utils.InfoLogger.Printf("Session started for table %s", user.Username)
	return &session, nil
}

// Reserve starts a session for a table on behalf of an employee.
func (s *SessionService) Reserve(ctx context.Context, userID string) (*models.ActiveSession, error) {
	var table models.User
	err := s.DB.WithContext(ctx).Scopes(roleScope(models.RoleCustomer)).
		Where("id = ?", userID).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return s.StartSession(ctx, &table)
}

// EndSession releases a table. Releasing a free table is not an error.
func (s *SessionService) EndSession(ctx context.Context, userID string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", userID).Delete(&models.ActiveSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return recordChange(tx, models.FeedSessions, userID, actionDelete)
	})
	if err != nil {
		return utils.NewStorageError(err)
	}

	invalidate(ctx, s.Cache, cacheKeyActiveSessions)
	utils.InfoLogger.Printf("Session released for user %s", userID)
	return nil
}

func (s *SessionService) List(ctx context.Context) ([]models.ActiveSession, error) {
	var sessions []models.ActiveSession
	if err := s.DB.WithContext(ctx).Order("login_at DESC").Find(&sessions).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return sessions, nil
}

// ActiveUsernames is the bulk list callers test occupancy against.
func (s *SessionService) ActiveUsernames(ctx context.Context) ([]string, error) {
	return cached(ctx, s.Cache, cacheKeyActiveSessions, func() ([]string, error) {
		usernames := make([]string, 0)
		if err := s.DB.WithContext(ctx).Model(&models.ActiveSession{}).
			Order("username").
			Pluck("username", &usernames).Error; err != nil {
			return nil, utils.NewStorageError(err)
		}
		return usernames, nil
	})
}

// IsOccupied is set membership over a fetched username list.
func IsOccupied(activeUsernames []string, username string) bool {
	for _, u := range activeUsernames {
		if u == username {
			return true
		}
	}
	return false
}

// TableStatus is a customer account annotated with occupancy.
type TableStatus struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
	Occupied bool   `json:"occupied"`
}

// Tables lists every table with its occupancy, numeric-aware by name.
func (s *SessionService) Tables(ctx context.Context) ([]TableStatus, error) {
	var tables []models.User
	if err := s.DB.WithContext(ctx).Scopes(roleScope(models.RoleCustomer)).Find(&tables).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	active, err := s.ActiveUsernames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TableStatus, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableStatus{
			ID:       t.ID,
			Username: t.Username,
			Slug:     t.Slug,
			Occupied: IsOccupied(active, t.Username),
		})
	}
	sortByUsername(out, func(t TableStatus) string { return t.Username })
	return out, nil
}
