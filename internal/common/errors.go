// Package common defines shared constants, sentinel errors and random helpers
// used across PointGate layers. Callers should use errors.Is to match these
// values; layers wrap them with fmt.Errorf("...: %w", err).
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInvalidInput = errors.New("invalid input")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")

	// Challenge errors. ErrNoActiveChallenge also matches ErrorNotFound.
	ErrNoActiveChallenge = fmt.Errorf("no active challenge: %w", ErrorNotFound)
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrChallengeMismatch = errors.New("challenge mismatch")

	// Time-based secret state.
	ErrSecretNotProvisioned = errors.New("time-based secret not provisioned")
	ErrAlreadyProvisioned   = errors.New("time-based secret already provisioned")

	// Ledger errors.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
