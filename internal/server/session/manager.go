// Package session is the permission gate. A Manager checks credentials and
// hands out Sessions; a Session answers who is acting and what they may
// touch.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/cryptox"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/otp"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/accounts"
)

// Login outcomes reported to the Observer.
const (
	LoginOK             = "ok"
	LoginBadCredentials = "bad_credentials"
	LoginBadCode        = "bad_code"
	LoginError          = "error"
)

// TimeCodes computes and checks time-based codes. *otp.Engine implements it.
type TimeCodes interface {
	GenerateSecret(length int) (string, error)
	VerifyTimeCode(secret, code string) error
	TOTP() otp.TOTP
	Now() time.Time
}

type Observer interface {
	LoginAttempt(outcome string)
}

type nopObserver struct{}

func (nopObserver) LoginAttempt(string) {}

// Provisioning is a time-based secret waiting for its first code.
type Provisioning struct {
	Secret string
	URL    string
}

type Manager struct {
	accounts     accounts.Repository
	hasher       cryptox.Hasher
	codes        TimeCodes
	issuer       string
	secretLength int
	log          logging.Logger
	observer     Observer

	mu      sync.Mutex
	pending map[string]string

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l.With("module", "session") }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithIssuer sets the issuer shown by authenticator apps.
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.issuer = issuer }
}

func WithSecretLength(n int) Option {
	return func(m *Manager) { m.secretLength = n }
}

func NewManager(repo accounts.Repository, hasher cryptox.Hasher, codes TimeCodes, opts ...Option) *Manager {
	m := &Manager{
		accounts:     repo,
		hasher:       hasher,
		codes:        codes,
		issuer:       "PointGate",
		secretLength: otp.MinSecretLength,
		log:          logging.Nop(),
		observer:     nopObserver{},
		pending:      make(map[string]string),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Anonymous returns a session nobody is logged into.
func (m *Manager) Anonymous() *Session {
	return &Session{m: m}
}

// Login checks the password and, when the account has time-based codes
// enabled, totpCode. Unknown users and wrong passwords both yield
// common.ErrorUnauthorized.
func (m *Manager) Login(ctx context.Context, userName, password, totpCode string) (*Session, error) {
	a, err := m.accounts.Get(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same effort as for a real account
			m.hasher.Verify(password, m.dummy())
			m.observer.LoginAttempt(LoginBadCredentials)
			return nil, common.ErrorUnauthorized
		}
		m.observer.LoginAttempt(LoginError)
		return nil, fmt.Errorf("login %s: %w", userName, err)
	}

	ok, err := m.hasher.Verify(password, a.PasswordHash)
	if err != nil {
		m.observer.LoginAttempt(LoginError)
		m.log.Error(ctx, "stored password hash unreadable", "username", userName, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		m.observer.LoginAttempt(LoginBadCredentials)
		return nil, common.ErrorUnauthorized
	}

	if a.TOTPEnabled() {
		if totpCode == "" {
			m.observer.LoginAttempt(LoginBadCode)
			return nil, fmt.Errorf("time-based code required: %w", common.ErrorInvalidInput)
		}
		if err := m.codes.VerifyTimeCode(a.TOTPSecret, totpCode); err != nil {
			m.observer.LoginAttempt(LoginBadCode)
			return nil, fmt.Errorf("time-based code: %w", common.ErrChallengeMismatch)
		}
	}

	if err := m.accounts.TouchLastLogin(ctx, userName, m.codes.Now()); err != nil {
		m.observer.LoginAttempt(LoginError)
		return nil, fmt.Errorf("record login: %w", err)
	}

	m.observer.LoginAttempt(LoginOK)
	m.log.Info(ctx, "user logged in", "username", userName)
	return &Session{m: m, userName: a.UserName}, nil
}

// Resume rebuilds the session of an already authenticated user, such as
// the holder of a valid session token.
func (m *Manager) Resume(ctx context.Context, userName string) (*Session, error) {
	if _, err := m.accounts.Get(ctx, userName); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("resume %s: %w", userName, err)
	}
	return &Session{m: m, userName: userName}, nil
}

func (m *Manager) dummy() string {
	m.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			return
		}
		if h, err := m.hasher.Hash(pw); err == nil {
			m.dummyHash = h
		}
	})
	return m.dummyHash
}

// BeginTOTP generates a secret for the session user and parks it until
// ConfirmTOTP. The account is not changed.
func (m *Manager) BeginTOTP(ctx context.Context, s *Session) (*Provisioning, error) {
	userName, err := s.CurrentIdentity()
	if err != nil {
		return nil, err
	}

	a, err := m.accounts.Get(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", userName, err)
	}
	if a.TOTPEnabled() {
		return nil, common.ErrAlreadyProvisioned
	}

	secret, err := m.codes.GenerateSecret(m.secretLength)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	m.mu.Lock()
	m.pending[userName] = secret
	m.mu.Unlock()

	return &Provisioning{
		Secret: secret,
		URL:    m.codes.TOTP().OTPAuthURL(m.issuer, userName, secret),
	}, nil
}

// ConfirmTOTP enables time-based codes once code verifies against the
// pending secret. A failed check discards the pending secret.
func (m *Manager) ConfirmTOTP(ctx context.Context, s *Session, code string) error {
	userName, err := s.CurrentIdentity()
	if err != nil {
		return err
	}

	m.mu.Lock()
	secret, ok := m.pending[userName]
	delete(m.pending, userName)
	m.mu.Unlock()

	if !ok {
		return common.ErrSecretNotProvisioned
	}
	if err := m.codes.VerifyTimeCode(secret, code); err != nil {
		return fmt.Errorf("confirm time-based code: %w", common.ErrChallengeMismatch)
	}

	a, err := m.accounts.Get(ctx, userName)
	if err != nil {
		return fmt.Errorf("account %s: %w", userName, err)
	}
	if a.TOTPEnabled() {
		return common.ErrAlreadyProvisioned
	}
	if err := m.accounts.SetTOTPSecret(ctx, userName, secret); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}

	m.log.Info(ctx, "time-based codes enabled", "username", userName)
	return nil
}

// DisableTOTP removes the secret after checking a current code.
func (m *Manager) DisableTOTP(ctx context.Context, s *Session, code string) error {
	userName, err := s.CurrentIdentity()
	if err != nil {
		return err
	}

	if err := m.VerifyTOTP(ctx, userName, code); err != nil {
		return err
	}

	if err := m.accounts.SetTOTPSecret(ctx, userName, ""); err != nil {
		return fmt.Errorf("clear secret: %w", err)
	}

	m.log.Info(ctx, "time-based codes disabled", "username", userName)
	return nil
}

// VerifyTOTP checks code against the user's stored secret. It never
// consumes anything.
func (m *Manager) VerifyTOTP(ctx context.Context, userName, code string) error {
	a, err := m.accounts.Get(ctx, userName)
	if err != nil {
		return fmt.Errorf("account %s: %w", userName, err)
	}
	if !a.TOTPEnabled() {
		return common.ErrSecretNotProvisioned
	}
	return m.codes.VerifyTimeCode(a.TOTPSecret, code)
}

// PendingTOTP reports whether userName has a secret awaiting confirmation.
func (m *Manager) PendingTOTP(userName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[userName]
	return ok
}
