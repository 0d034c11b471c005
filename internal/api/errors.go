package api

import (
	"errors"

	"github.com/dmitrijs2005/pointgate/internal/common"
)

// ErrorDomain is the domain of the google.rpc.ErrorInfo detail attached to
// failed calls.
const ErrorDomain = "pointgate"

// reasons is ordered most specific first: ErrNoActiveChallenge also matches
// ErrorNotFound.
var reasons = []struct {
	reason string
	err    error
}{
	{"NO_ACTIVE_CHALLENGE", common.ErrNoActiveChallenge},
	{"CHALLENGE_EXPIRED", common.ErrChallengeExpired},
	{"CHALLENGE_MISMATCH", common.ErrChallengeMismatch},
	{"NOT_PROVISIONED", common.ErrSecretNotProvisioned},
	{"ALREADY_PROVISIONED", common.ErrAlreadyProvisioned},
	{"INSUFFICIENT_BALANCE", common.ErrInsufficientBalance},
	{"INVALID_TOKEN", common.ErrInvalidToken},
	{"NOT_FOUND", common.ErrorNotFound},
	{"ALREADY_EXISTS", common.ErrorAlreadyExists},
	{"UNAUTHORIZED", common.ErrorUnauthorized},
	{"INVALID_INPUT", common.ErrorInvalidInput},
	{"INTERNAL", common.ErrorInternal},
}

// Reason names the sentinel err wraps, or returns "" for unknown errors.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

// ErrorForReason returns the sentinel named by reason, or nil.
func ErrorForReason(reason string) error {
	for _, r := range reasons {
		if r.reason == reason {
			return r.err
		}
	}
	return nil
}
