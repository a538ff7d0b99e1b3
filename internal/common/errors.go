// Package common defines shared constants and sentinel errors used across
// client and server layers of imagevault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Authorization errors.
	ErrorForbidden    = errors.New("forbidden")
	ErrorUnauthorized = errors.New("unauthorized")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")
	ErrorLedger     = errors.New("ledger error")

	// Cryptographic failures. Messages deliberately do not say whether the
	// password was wrong or the data was corrupted.
	ErrorUnwrap  = errors.New("unable to unwrap key")
	ErrorDecrypt = errors.New("unable to decrypt data")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
