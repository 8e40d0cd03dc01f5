package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

func TestRegistrationApproval(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db)
	svc := NewUserService(db, nil)

	a, err := auth.CreateUser(ctx, NewUser{Username: "ana", Password: "Senha@123", Role: models.RoleEmployee, ApprovalStatus: models.ApprovalPending})
	require.NoError(t, err)
	b, err := auth.CreateUser(ctx, NewUser{Username: "bia", Password: "Senha@123", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending})
	require.NoError(t, err)

	pending, err := svc.PendingRegistrations(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, svc.Approve(ctx, a.ID))
	require.NoError(t, svc.Reject(ctx, b.ID))
	assert.ErrorIs(t, svc.Approve(ctx, a.ID), utils.ErrNotFound)
	assert.ErrorIs(t, svc.Reject(ctx, b.ID), utils.ErrNotFound)

	approved, err := svc.Approved(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "ana", approved[0].Username)
}

func TestToggleAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, nil)
	root := seedUser(t, db, "root", "x", models.RoleAdmin)
	emp := seedUser(t, db, "joana", "x", models.RoleEmployee)

	u, err := svc.ToggleAdmin(ctx, actorFor(root), emp.ID)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.False(t, u.IsEmployee)

	u, err = svc.ToggleAdmin(ctx, actorFor(root), emp.ID)
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
	assert.True(t, u.IsEmployee)

	_, err = svc.ToggleAdmin(ctx, actorFor(root), root.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = svc.ToggleAdmin(ctx, actorFor(root), "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestToggleAdminRefusesTables(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, nil)
	auth := NewAuthService(db)
	root := seedUser(t, db, "root", "x", models.RoleAdmin)
	table := seedUser(t, db, "mesa9", "pw", models.RoleCustomer)

	_, err := svc.ToggleAdmin(ctx, actorFor(root), table.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	var stored models.User
	require.NoError(t, db.Where("id = ?", table.ID).First(&stored).Error)
	assert.Equal(t, models.RoleCustomer, stored.Role())

	_, err = auth.VerifyCredentials(ctx, "mesa9", "pw", models.RoleAdmin)
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = auth.VerifyCredentials(ctx, "mesa9", "pw", models.RoleCustomer)
	assert.NoError(t, err)
}

func TestDeleteUserKeepsOrders(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, NewMemoryCache())
	root := seedUser(t, db, "root", "x", models.RoleAdmin)
	table := seedUser(t, db, "mesa1", "", models.RoleCustomer)
	item := seedMenuItem(t, db, "Agua", "Bebidas", 3)

	_, err := NewSessionService(db, nil).StartSession(ctx, table)
	require.NoError(t, err)
	_, err = NewOrderService(db).PlaceOrder(ctx, actorFor(table), PlaceOrderInput{
		Items: []OrderItemInput{{MenuItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, actorFor(root), table.ID))
	assert.ErrorIs(t, svc.Delete(ctx, actorFor(root), table.ID), utils.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, actorFor(root), root.ID), utils.ErrForbidden)

	var sessions, orders int64
	db.Model(&models.ActiveSession{}).Count(&sessions)
	db.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(0), sessions)
	assert.Equal(t, int64(1), orders)
}
