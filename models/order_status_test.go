package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		staff   bool
		action  OrderAction
		want    OrderStatus
		wantErr bool
	}{
		{"customer cancels pending", StatusPending, false, ActionCancel, StatusCancelled, false},
		{"customer cannot cancel preparing", StatusPreparing, false, ActionCancel, StatusPreparing, true},
		{"customer cannot accept", StatusPending, false, ActionAccept, StatusPending, true},
		{"employee accepts", StatusPending, true, ActionAccept, StatusPreparing, false},
		{"employee marks ready", StatusPreparing, true, ActionReady, StatusReady, false},
		{"employee completes", StatusReady, true, ActionComplete, StatusCompleted, false},
		{"employee cancels ready", StatusReady, true, ActionCancel, StatusCancelled, false},
		{"skip preparing", StatusPending, true, ActionReady, StatusPending, true},
		{"completed is terminal", StatusCompleted, true, ActionAccept, StatusCompleted, true},
		{"cancelled is terminal", StatusCancelled, true, ActionCancel, StatusCancelled, true},
		{"completed to preparing", StatusCompleted, true, ActionReady, StatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.staff, tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanHide(t *testing.T) {
	assert.NoError(t, CanHide(StatusCompleted))
	assert.NoError(t, CanHide(StatusCancelled))
	assert.ErrorIs(t, CanHide(StatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, CanHide(StatusReady), ErrInvalidTransition)
}

func TestAssignsEmployee(t *testing.T) {
	assert.True(t, AssignsEmployee(ActionAccept))
	assert.True(t, AssignsEmployee(ActionCancel))
	assert.False(t, AssignsEmployee(ActionReady))
	assert.False(t, AssignsEmployee(ActionComplete))
}

func TestDisplayNumber(t *testing.T) {
	// "a" = 97 -> 97 < 100 -> 197
	assert.Equal(t, "197", DisplayNumber("a"))
	// "ab" = (97*31 + 98) % 1000 = 105
	assert.Equal(t, "105", DisplayNumber("ab"))
	assert.Equal(t, "100", DisplayNumber(""))

	id := "3f2b9c1e-0a7d-4e55-9b1a-2c6f8e7d4a10"
	n := DisplayNumber(id)
	assert.Len(t, n, 3)
	assert.Equal(t, n, DisplayNumber(id))
}

func TestRoleFromFlags(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleFromFlags(true, false))
	assert.Equal(t, RoleAdmin, RoleFromFlags(true, true))
	assert.Equal(t, RoleEmployee, RoleFromFlags(false, true))
	assert.Equal(t, RoleCustomer, RoleFromFlags(false, false))

	admin, employee := RoleEmployee.Flags()
	assert.False(t, admin)
	assert.True(t, employee)
	assert.True(t, RoleAdmin.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
}
