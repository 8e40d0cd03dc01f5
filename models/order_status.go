package models

import "errors"

// ===============================
// Order Status
// ===============================

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

type OrderAction string

const (
	ActionAccept   OrderAction = "accept"
	ActionReady    OrderAction = "ready"
	ActionComplete OrderAction = "complete"
	ActionCancel   OrderAction = "cancel"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

type transition struct {
	from   OrderStatus
	staff  bool
	action OrderAction
}

var transitions = map[transition]OrderStatus{
	{StatusPending, false, ActionCancel}: StatusCancelled,

	{StatusPending, true, ActionAccept}:   StatusPreparing,
	{StatusPending, true, ActionCancel}:   StatusCancelled,
	{StatusPreparing, true, ActionReady}:  StatusReady,
	{StatusPreparing, true, ActionCancel}: StatusCancelled,
	{StatusReady, true, ActionComplete}:   StatusCompleted,
	{StatusReady, true, ActionCancel}:     StatusCancelled,
}

// ===============================
// Validations
// ===============================

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// NextStatus returns the status reached when an actor applies action to an
// order in status from. staff is true for employees and admins.
func NextStatus(from OrderStatus, staff bool, action OrderAction) (OrderStatus, error) {
	next, ok := transitions[transition{from, staff, action}]
	if !ok {
		return from, ErrInvalidTransition
	}
	return next, nil
}

// AssignsEmployee reports whether a staff action records the handling
// employee on the order.
func AssignsEmployee(action OrderAction) bool {
	return action == ActionAccept || action == ActionCancel
}

// CanHide only allows hiding orders that reached a terminal status.
func CanHide(current OrderStatus) error {
	if !current.IsTerminal() {
		return ErrInvalidTransition
	}
	return nil
}
