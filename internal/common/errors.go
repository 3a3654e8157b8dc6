// Package common defines shared constants and sentinel errors used across
// client and server layers of modelmart. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Paid-mutation errors.
	ErrorNotUploader = errors.New("caller is not the uploader")
	ErrorNoPayment   = errors.New("no confirmed payment")

	// Purchase errors.
	ErrorAlreadyPurchased = errors.New("already purchased")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
