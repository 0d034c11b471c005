// Package otp is the one-time credential engine. It issues and verifies
// short-lived random challenges and computes time-based codes from a
// per-account secret.
package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

const (
	CodeLength      = 6
	DefaultValidity = 5 * time.Minute
)

// Verification outcomes reported to the Observer.
const (
	OutcomeOK       = "ok"
	OutcomeMissing  = "missing"
	OutcomeExpired  = "expired"
	OutcomeMismatch = "mismatch"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Observer receives engine events, typically to update metrics.
type Observer interface {
	ChallengeIssued(purpose string)
	ChallengeVerified(outcome string)
}

type nopObserver struct{}

func (nopObserver) ChallengeIssued(string)   {}
func (nopObserver) ChallengeVerified(string) {}

type Engine struct {
	store     ChallengeStore
	deliverer Deliverer
	validity  time.Duration
	retention time.Duration
	totp      TOTP
	now       func() time.Time
	log       logging.Logger
	observer  Observer
}

type Option func(*Engine)

func WithValidity(d time.Duration) Option {
	return func(e *Engine) { e.validity = d }
}

// WithRetention caps how long a challenge is kept after it expires. With
// zero, the default, a challenge stays until a verification removes it, so
// a late attempt is always reported as expired.
func WithRetention(d time.Duration) Option {
	return func(e *Engine) { e.retention = d }
}

func WithTOTP(t TOTP) Option {
	return func(e *Engine) { e.totp = t }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l.With("module", "otp") }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine returns an engine that owns store. Two engines must not share
// a store.
func NewEngine(store ChallengeStore, deliverer Deliverer, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		deliverer: deliverer,
		validity:  DefaultValidity,
		totp:      DefaultTOTP(),
		now:       time.Now,
		log:       logging.Nop(),
		observer:  nopObserver{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) TOTP() TOTP {
	return e.totp
}

// Issue creates a challenge for userName with the default validity.
func (e *Engine) Issue(ctx context.Context, userName, purpose string) (*models.Challenge, error) {
	return e.IssueFor(ctx, userName, purpose, e.validity)
}

// IssueFor creates a challenge valid for validity, replaces any earlier
// challenge of the same user and hands the code to the deliverer.
func (e *Engine) IssueFor(ctx context.Context, userName, purpose string, validity time.Duration) (*models.Challenge, error) {
	if userName == "" || validity <= 0 {
		return nil, fmt.Errorf("issue challenge: %w", common.ErrorInvalidInput)
	}

	code, err := common.RandomDigits(CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	c := &models.Challenge{
		Code:      code,
		UserName:  userName,
		Purpose:   purpose,
		ExpiresAt: e.now().Add(validity),
	}

	var ttl time.Duration
	if e.retention > 0 {
		ttl = validity + e.retention
	}
	if err := e.store.Put(ctx, c, ttl); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	if err := e.deliverer.Deliver(ctx, c); err != nil {
		return nil, fmt.Errorf("deliver challenge: %w", err)
	}

	e.observer.ChallengeIssued(purpose)
	e.log.Debug(ctx, "challenge issued", "username", userName, "purpose", purpose, "expires_at", c.ExpiresAt)
	return c, nil
}

// Verify checks code against the user's active challenge.
//
// A match consumes the challenge. An expired challenge is removed and
// reported as common.ErrChallengeExpired. A wrong code leaves the challenge
// in place so the holder can retry until it expires.
func (e *Engine) Verify(ctx context.Context, userName, code string) error {
	return e.verify(ctx, userName, "", code)
}

// VerifyPurpose is Verify for a challenge that must have been issued with
// exactly purpose. A challenge issued for another purpose is reported as
// common.ErrChallengeMismatch and stays active.
func (e *Engine) VerifyPurpose(ctx context.Context, userName, purpose, code string) error {
	if purpose == "" {
		return fmt.Errorf("empty purpose: %w", common.ErrorInvalidInput)
	}
	return e.verify(ctx, userName, purpose, code)
}

func (e *Engine) verify(ctx context.Context, userName, purpose, code string) error {
	if code == "" {
		e.observer.ChallengeVerified(OutcomeInvalid)
		return fmt.Errorf("empty code: %w", common.ErrorInvalidInput)
	}

	now := e.now()
	err := e.store.Resolve(ctx, userName, func(c *models.Challenge) (bool, error) {
		if c.Expired(now) {
			return true, common.ErrChallengeExpired
		}
		if purpose != "" && c.Purpose != purpose {
			return false, fmt.Errorf("issued for %q: %w", c.Purpose, common.ErrChallengeMismatch)
		}
		if subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) != 1 {
			return false, common.ErrChallengeMismatch
		}
		return true, nil
	})

	outcome := verifyOutcome(err)
	e.observer.ChallengeVerified(outcome)
	if err != nil {
		e.log.Debug(ctx, "challenge rejected", "username", userName, "outcome", outcome)
	}
	return err
}

func verifyOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, common.ErrNoActiveChallenge):
		return OutcomeMissing
	case errors.Is(err, common.ErrChallengeExpired):
		return OutcomeExpired
	case errors.Is(err, common.ErrChallengeMismatch):
		return OutcomeMismatch
	default:
		return OutcomeError
	}
}

// GenerateSecret returns a new time-based secret of the given length.
func (e *Engine) GenerateSecret(length int) (string, error) {
	return GenerateSecret(length)
}

// TimeCode returns the current time-based code for secret.
func (e *Engine) TimeCode(secret string) (string, error) {
	return e.totp.Code(secret, e.now())
}

// VerifyTimeCode checks a time-based code against secret at the current
// time. It is stateless and never consumes anything.
func (e *Engine) VerifyTimeCode(secret, code string) error {
	return e.totp.Verify(secret, code, e.now())
}
