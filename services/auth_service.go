package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
	"gorm.io/gorm"
)

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// NewUser carries the fields accepted by every user-creating endpoint.
type NewUser struct {
	Username       string
	Phone          string
	Password       string
	Role           models.Role
	ApprovalStatus string
}

// roleScope applies the login filter for each role. Staff must also be approved.
func roleScope(role models.Role) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch role {
		case models.RoleAdmin:
			return db.Where("is_admin = ? AND approval_status = ?", true, models.ApprovalApproved)
		case models.RoleEmployee:
			return db.Where("is_employee = ? AND is_admin = ? AND approval_status = ?", true, false, models.ApprovalApproved)
		default:
			return db.Where("is_admin = ? AND is_employee = ?", false, false)
		}
	}
}

// VerifyCredentials authenticates username/password for the given role. A
// missing user and a wrong password both yield ErrInvalidCredentials. A
// legacy plaintext password is rehashed after a successful match.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Scopes(roleScope(role)).
		Where("username = ?", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}

	ok, upgrade := utils.ComparePassword(password, user.PasswordHash)
	if !ok {
		return nil, utils.ErrInvalidCredentials
	}
	if upgrade {
		s.upgradePasswordHash(ctx, &user, password)
	}
	return &user, nil
}

// upgradePasswordHash is best effort: the login already succeeded.
func (s *AuthService) upgradePasswordHash(ctx context.Context, user *models.User, plain string) {
	hash, err := utils.HashPassword(plain)
	if err != nil {
		utils.ErrorLogger.Warnf("Hashing legacy password for %s: %v", user.Username, err)
		return
	}
	err = s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", hash).Error
	if err != nil {
		utils.ErrorLogger.Warnf("Upgrading password hash for %s: %v", user.Username, err)
		return
	}
	user.PasswordHash = hash
	utils.InfoLogger.Printf("Upgraded legacy password hash for user %s", user.Username)
}

// FindTable looks up a customer account by table number.
func (s *AuthService) FindTable(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Scopes(roleScope(models.RoleCustomer)).
		Where("username = ?", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &user, nil
}

// FindBySlug resolves a QR login token to its table.
func (s *AuthService) FindBySlug(ctx context.Context, slug string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Scopes(roleScope(models.RoleCustomer)).
		Where("slug = ?", slug).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &user, nil
}

// CreateUser checks for an existing username then inserts. Two concurrent
// requests can both pass the check; the unique index rejects the loser and
// that is reported as ErrDuplicateUsername too.
func (s *AuthService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, utils.ErrInvalidPayload
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	if count > 0 {
		return nil, utils.ErrDuplicateUsername
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.NewStorageError(err)
	}

	status := in.ApprovalStatus
	if status == "" {
		status = models.ApprovalApproved
	}
	isAdmin, isEmployee := in.Role.Flags()
	user := models.User{
		Username:       username,
		Phone:          in.Phone,
		PasswordHash:   hash,
		IsAdmin:        isAdmin,
		IsEmployee:     isEmployee,
		Slug:           utils.GenerateSlug(username),
		ApprovalStatus: status,
	}

	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, utils.ErrDuplicateUsername
		}
		return nil, utils.NewStorageError(err)
	}

	utils.InfoLogger.Printf("User %s created (role=%s, status=%s)", user.Username, user.Role(), user.ApprovalStatus)
	return &user, nil
}

// isDuplicateKey covers drivers whose errors gorm does not translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// FindTableByID returns the customer account with id, or ErrNotFound.
func (s *AuthService) FindTableByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Scopes(roleScope(models.RoleCustomer)).
		Where("id = ?", id).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &user, nil
}
