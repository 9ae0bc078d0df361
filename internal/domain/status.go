package domain

import "fmt"

type OrderStatus string

const (
	StatusProcessing    OrderStatus = "Processing"
	StatusBeingPrepared OrderStatus = "Being Prepared"
	StatusCompleted     OrderStatus = "Completed"
	StatusCancelled     OrderStatus = "Cancelled"
)

type CustomerStatus string

const (
	CustomerStatusPending   CustomerStatus = "Pending"
	CustomerStatusDelivered CustomerStatus = "Delivered"
	CustomerStatusCancelled CustomerStatus = "Cancelled"
)

// transitions lists every permitted (source, target) pair. Anything absent is rejected.
var transitions = map[OrderStatus][]OrderStatus{
	StatusProcessing:    {StatusBeingPrepared, StatusCancelled},
	StatusBeingPrepared: {StatusCompleted, StatusCancelled},
	StatusCompleted:     nil,
	StatusCancelled:     nil,
}

// rolePermissions lists the targets each role may request.
var rolePermissions = map[Role][]OrderStatus{
	RoleRestaurant: {StatusBeingPrepared, StatusCancelled, StatusCompleted},
	RoleCustomer:   {StatusCompleted},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s OrderStatus) Terminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// CanTransition reports whether target is reachable from s in one step.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidTransition for any pair outside the table.
func CheckTransition(from, to OrderStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func CheckPermission(role Role, target OrderStatus) error {
	for _, t := range rolePermissions[role] {
		if t == target {
			return nil
		}
	}
	return fmt.Errorf("%w: %s may not set status %s", ErrForbidden, role, target)
}

// CustomerStatusFor is the customer-facing status shown for an order status.
func CustomerStatusFor(s OrderStatus) CustomerStatus {
	switch s {
	case StatusCompleted:
		return CustomerStatusDelivered
	case StatusCancelled:
		return CustomerStatusCancelled
	default:
		return CustomerStatusPending
	}
}
