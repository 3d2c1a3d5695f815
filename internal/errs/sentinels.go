// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds indicates a spend attempted with fewer coins than the price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistence indicates the underlying store failed to read or write.
	// In-memory state stays authoritative when a write fails.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidPassword indicates a wrong note password.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrRateLimited indicates temporary lock due to too many failed unlock attempts.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfirmationRequired indicates a permanent delete without a valid confirmation token.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrForbidden indicates an administrative action outside developer mode.
	ErrForbidden = errors.New("forbidden")

	// ErrLocked indicates the note is locked and the operation needs its password.
	ErrLocked = errors.New("note is locked")

	// ErrInvalid indicates input validation failure.
	ErrInvalid = errors.New("invalid argument")

	// ErrConflict indicates the target changed between reading it and writing the result.
	ErrConflict = errors.New("conflict")

	// ErrAIUnavailable indicates the text processor failed; content is left unchanged.
	ErrAIUnavailable = errors.New("ai processing failed")
)
