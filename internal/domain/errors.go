package domain

import "errors"

// Domain errors. Callers wrap them with detail using %w and match with errors.Is.
var (
	ErrDuplicateUsername = errors.New("username already registered")
	ErrInvalidCredential = errors.New("could not validate credentials")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds in wallet")
	ErrItemNotFound      = errors.New("item not found")
	ErrValidation        = errors.New("validation error")
)
