package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("user is unauthorized to access the resource")
	ErrForbidden                  = errors.New("user is forbidden to perform the action")

	// * Not-found errors, kept distinct so callers can tell
	// "doesn't exist" from "exists but invalid operation".
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrProductNotFound  = errors.New("product variant not found")
	ErrDiscountNotFound = errors.New("discount rule not found")
	ErrStockNotFound    = errors.New("stock record not found")

	// * Business errors.
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidTransition      = errors.New("order status transition is not allowed")
	ErrDiscountUsageExceeded  = errors.New("discount usage limit exceeded")
	ErrDiscountNotQualified   = errors.New("cart does not qualify for discount")
	ErrDiscountNotApplicable  = errors.New("discount code is not applicable")
	ErrRuleKindNotImplemented = errors.New("discount rule kind is not implemented")
	ErrOrderNotCancellable    = errors.New("order cannot be cancelled")
	ErrOrderNotArchivable     = errors.New("order must be in a terminal status to archive")
	ErrOrderNotArchived       = errors.New("order is not archived")
	ErrPaymentNotPending      = errors.New("order payment is not pending")
	ErrBatchTooLarge          = errors.New("bulk update batch exceeds the allowed size")
	ErrNegativeAmount         = errors.New("monetary amount must not be negative")
)

// ValidationError reports a single bad input field before any side effect.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }

// StockShortage describes one line that could not be reserved.
type StockShortage struct {
	VariantID  uint64
	LocationID uint64
	Requested  int
	Available  int
}

// StockUnavailableError carries every short line of a reservation batch,
// so the caller sees all unavailable items in one response.
type StockUnavailableError struct {
	Items []StockShortage
}

func (e *StockUnavailableError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Items))
}

func (e *StockUnavailableError) Unwrap() error { return ErrInsufficientStock }

// TransitionError reports a rejected state-machine transition.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
