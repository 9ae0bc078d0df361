package domain

import "errors"

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindState
	KindFunds
	KindIntegrity
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindFunds:
		return "funds"
	case KindIntegrity:
		return "integrity"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a classified business error. Sentinels below are compared with errors.Is.
type Error struct {
	Kind ErrorKind
	msg  string
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

var (
	ErrEmptyCart        = NewError(KindValidation, "cart is empty")
	ErrItemUnavailable  = NewError(KindValidation, "menu item is no longer available")
	ErrSingleRestaurant = NewError(KindValidation, "cart items must come from a single restaurant")
	ErrInvalidQuantity  = NewError(KindValidation, "quantity must be between 1 and 1000")
	ErrInvalidPrice     = NewError(KindValidation, "price must be a positive amount in cents up to 100000.00")
	ErrUnknownStatus    = NewError(KindValidation, "unknown order status")
	ErrInvalidRole      = NewError(KindValidation, "unknown role")
	ErrInvalidName      = NewError(KindValidation, "name is required")
	ErrInvalidHours     = NewError(KindValidation, "opening hours must be HH:MM")

	ErrOrderNotFound     = NewError(KindState, "order not found")
	ErrMenuItemNotFound  = NewError(KindState, "menu item not found")
	ErrInvalidTransition = NewError(KindState, "invalid order status transition")
	ErrConcurrentUpdate  = NewError(KindState, "concurrent update, retry the request")
	ErrUserExists        = NewError(KindState, "username already taken")

	ErrInsufficientBalance = NewError(KindFunds, "insufficient balance")

	ErrAccountNotFound = NewError(KindIntegrity, "ledger account not found")

	ErrForbidden = NewError(KindForbidden, "operation not permitted")

	ErrOrderCreation = NewError(KindInternal, "order creation failed")
)

// KindOf classifies err by the first domain Error in its chain.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
