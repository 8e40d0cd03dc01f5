package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

func TestVerifyCredentialsUpgradesPlaintext(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)
	seedUser(t, db, "joana", "legacy-pass", models.RoleEmployee)

	user, err := svc.VerifyCredentials(ctx, "joana", "legacy-pass", models.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, "joana", user.Username)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "joana").First(&stored).Error)
	assert.True(t, utils.IsBcryptHash(stored.PasswordHash))

	// second login goes through bcrypt
	_, err = svc.VerifyCredentials(ctx, "joana", "legacy-pass", models.RoleEmployee)
	assert.NoError(t, err)
	_, err = svc.VerifyCredentials(ctx, "joana", "wrong", models.RoleEmployee)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestVerifyCredentialsRoleFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)
	seedUser(t, db, "chefe", "admin-pass", models.RoleAdmin)
	seedUser(t, db, "mesa1", "", models.RoleCustomer)

	_, err := svc.VerifyCredentials(ctx, "chefe", "admin-pass", models.RoleEmployee)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	user, err := svc.VerifyCredentials(ctx, "chefe", "admin-pass", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role())

	_, err = svc.VerifyCredentials(ctx, "nobody", "x", models.RoleAdmin)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	// a table with no password cannot log in with an empty password either
	_, err = svc.VerifyCredentials(ctx, "mesa1", "", models.RoleCustomer)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestPendingStaffCannotLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	_, err := svc.CreateUser(ctx, NewUser{
		Username:       "novo",
		Password:       "Senha@123",
		Role:           models.RoleEmployee,
		ApprovalStatus: models.ApprovalPending,
	})
	require.NoError(t, err)

	_, err = svc.VerifyCredentials(ctx, "novo", "Senha@123", models.RoleEmployee)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	require.NoError(t, NewUserService(db, nil).Approve(ctx, mustFindUser(t, svc, "novo").ID))
	_, err = svc.VerifyCredentials(ctx, "novo", "Senha@123", models.RoleEmployee)
	assert.NoError(t, err)
}

func mustFindUser(t *testing.T, svc *AuthService, username string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, svc.DB.Where("username = ?", username).First(&u).Error)
	return &u
}

func TestCreateUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.CreateUser(ctx, NewUser{Username: "mesa7", Password: "x", Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Regexp(t, `^mesa7-[0-9a-f]{8}$`, user.Slug)
	assert.Equal(t, models.ApprovalApproved, user.ApprovalStatus)

	_, err = svc.CreateUser(ctx, NewUser{Username: "mesa7", Password: "y", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, utils.ErrDuplicateUsername)

	_, err = svc.CreateUser(ctx, NewUser{Username: " ", Password: "y"})
	assert.ErrorIs(t, err, utils.ErrInvalidPayload)
}

func TestCreateUserConcurrentSameName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateUser(ctx, NewUser{
				Username:       "mesa7",
				Password:       "Senha@123",
				Role:           models.RoleEmployee,
				ApprovalStatus: models.ApprovalPending,
			})
		}(i)
	}
	wg.Wait()

	var count int64
	db.Model(&models.User{}).Where("username = ?", "mesa7").Count(&count)
	assert.Equal(t, int64(1), count)

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, utils.ErrDuplicateUsername)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestFindTableAndSlug(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)
	table := seedUser(t, db, "Mesa 3", "", models.RoleCustomer)
	seedUser(t, db, "garcom", "x", models.RoleEmployee)

	got, err := svc.FindBySlug(ctx, table.Slug)
	require.NoError(t, err)
	assert.Equal(t, table.ID, got.ID)

	got, err = svc.FindTable(ctx, "Mesa 3")
	require.NoError(t, err)
	assert.Equal(t, table.ID, got.ID)

	_, err = svc.FindTable(ctx, "garcom")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = svc.FindBySlug(ctx, "nope")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}
