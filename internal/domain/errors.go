package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrFlightNotFound        = errors.New("flight not found")
	ErrScheduleNotFound      = errors.New("no flight available for the specified date")
	ErrInsufficientInventory = errors.New("insufficient seats")
	ErrCapacityExceeded      = errors.New("seat release exceeds aircraft capacity")
	// ErrBookingNotFound covers both a missing booking and one owned by someone else.
	ErrBookingNotFound   = errors.New("booking not found")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError reports input the caller has to correct.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientInventoryError carries the seats still available on the schedule.
type InsufficientInventoryError struct {
	SegmentID int64
	Remaining int
	Requested int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("only %d seats available", e.Remaining)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// TransactionError wraps a storage failure that aborted a unit of work.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// IsBusinessError reports whether err belongs to the domain taxonomy and
// must reach the caller unchanged.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrFlightNotFound,
		ErrScheduleNotFound,
		ErrInsufficientInventory,
		ErrBookingNotFound,
		ErrAlreadyCancelled,
		ErrTransactionFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
