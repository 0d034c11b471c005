// Package services contains server-side business logic. This file implements
// AccountService: registration, gated profile and password changes, and the
// administrator's account views.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/cryptox"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/ledger"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/pointgate/internal/server/session"
	"github.com/dmitrijs2005/pointgate/internal/validate"
	"github.com/shopspring/decimal"
)

// Challenge purposes that authorize account changes. Each flow accepts only
// a code issued for its own purpose.
const (
	PurposeProfile        = "profile"
	PurposeChangePassword = "change_password"
	PurposeResetPassword  = "reset_password"
)

const (
	TemporaryPasswordLength   = 12
	TemporaryPasswordAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!@#$%^&*"
)

// Challenges issues and verifies one-time challenges. *otp.Engine
// implements it.
type Challenges interface {
	Issue(ctx context.Context, userName, purpose string) (*models.Challenge, error)
	VerifyPurpose(ctx context.Context, userName, purpose, code string) error
	Now() time.Time
}

// WalletOpener opens the wallet of a new account. *ledger.Coordinator
// implements it.
type WalletOpener interface {
	CreateWallet(ctx context.Context, owner string, initial decimal.Decimal) (*models.Wallet, error)
}

type RegisterRequest struct {
	UserName string
	// Password may be empty; a temporary one is generated then.
	Password string
	FullName string
	Email    string
	Phone    string
}

type RegisterResult struct {
	Account *models.Account
	Wallet  *models.Wallet
	// TemporaryPassword is set when the password was generated.
	TemporaryPassword string
}

type AccountService struct {
	accounts   accounts.Repository
	hasher     cryptox.Hasher
	challenges Challenges
	wallets    WalletOpener
	log        logging.Logger
}

func NewAccountService(repo accounts.Repository, hasher cryptox.Hasher, challenges Challenges, wallets WalletOpener, log logging.Logger) *AccountService {
	return &AccountService{
		accounts:   repo,
		hasher:     hasher,
		challenges: challenges,
		wallets:    wallets,
		log:        log.With("module", "accounts"),
	}
}

// Register creates a regular account and its wallet.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	return s.register(ctx, req, models.RoleRegular)
}

// RegisterByAdmin registers an account on behalf of an administrator. The
// password is always generated and must be changed on first login.
func (s *AccountService) RegisterByAdmin(ctx context.Context, sess *session.Session, req RegisterRequest) (*RegisterResult, error) {
	if err := sess.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	req.Password = ""
	return s.register(ctx, req, models.RoleRegular)
}

func (s *AccountService) register(ctx context.Context, req RegisterRequest, role models.Role) (*RegisterResult, error) {
	if err := validateIdentity(req); err != nil {
		return nil, err
	}

	exists, err := s.accounts.Exists(ctx, req.UserName)
	if err != nil {
		return nil, fmt.Errorf("error checking account: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("username %s: %w", req.UserName, common.ErrorAlreadyExists)
	}

	password := req.Password
	generated := password == ""
	if generated {
		if password, err = temporaryPassword(); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	a := &models.Account{
		UserName:              req.UserName,
		PasswordHash:          hash,
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Role:                  role,
		PasswordIsTemporary:   generated,
		MustChangeOnNextLogin: generated,
		CreatedAt:             s.challenges.Now(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	w, err := s.wallets.CreateWallet(ctx, a.UserName, decimal.Zero)
	if err != nil {
		s.log.Error(ctx, "account created without wallet", "username", a.UserName, "error", err)
		return nil, fmt.Errorf("error creating wallet: %w", err)
	}

	s.log.Info(ctx, "account registered", "username", a.UserName, "role", string(role), "generated_password", generated)

	res := &RegisterResult{Account: a, Wallet: w}
	if generated {
		res.TemporaryPassword = password
	}
	return res, nil
}

// BootstrapAdmin creates the administrator account when the identity store
// is empty. It reports whether an account was created.
func (s *AccountService) BootstrapAdmin(ctx context.Context, userName, password string) (bool, error) {
	all, err := s.accounts.All(ctx)
	if err != nil {
		return false, fmt.Errorf("error listing accounts: %w", err)
	}
	if len(all) > 0 {
		return false, nil
	}

	_, err = s.register(ctx, RegisterRequest{
		UserName: userName,
		Password: password,
		FullName: "Administrator",
		Email:    userName + "@pointgate.local",
	}, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Account returns target's record to target or an administrator.
func (s *AccountService) Account(ctx context.Context, sess *session.Session, target string) (*models.Account, error) {
	if err := sess.Authorize(ctx, target); err != nil {
		return nil, err
	}
	a, err := s.accounts.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", target, err)
	}
	return a, nil
}

// RequestChallenge issues a challenge to target for purpose. The code goes
// out through the engine's deliverer only.
func (s *AccountService) RequestChallenge(ctx context.Context, sess *session.Session, target, purpose string) (*ledger.ChallengeHandle, error) {
	if purpose == "" {
		return nil, fmt.Errorf("empty purpose: %w", common.ErrorInvalidInput)
	}
	if err := sess.Authorize(ctx, target); err != nil {
		return nil, err
	}
	if _, err := s.accounts.Get(ctx, target); err != nil {
		return nil, fmt.Errorf("account %s: %w", target, err)
	}

	c, err := s.challenges.Issue(ctx, target, purpose)
	if err != nil {
		return nil, err
	}
	return &ledger.ChallengeHandle{UserName: c.UserName, Purpose: c.Purpose, ExpiresAt: c.ExpiresAt}, nil
}

// UpdateProfile replaces target's profile fields once target's challenge
// verifies.
func (s *AccountService) UpdateProfile(ctx context.Context, sess *session.Session, target string, p models.Profile, code string) (*models.Account, error) {
	if err := sess.Authorize(ctx, target); err != nil {
		return nil, err
	}
	if err := validate.Email(p.Email); err != nil {
		return nil, err
	}
	if err := validate.Phone(p.Phone); err != nil {
		return nil, err
	}

	if _, err := s.accounts.Get(ctx, target); err != nil {
		return nil, fmt.Errorf("account %s: %w", target, err)
	}
	if err := s.challenges.VerifyPurpose(ctx, target, PurposeProfile, code); err != nil {
		return nil, err
	}

	a, err := s.accounts.SetProfile(ctx, target, p)
	if err != nil {
		return nil, fmt.Errorf("error saving profile: %w", err)
	}

	s.log.Info(ctx, "profile updated", "username", target)
	return a, nil
}

// ChangePassword replaces the session user's password. The old password
// and a challenge must both check out.
func (s *AccountService) ChangePassword(ctx context.Context, sess *session.Session, oldPassword, newPassword, code string) error {
	userName, err := sess.CurrentIdentity()
	if err != nil {
		return err
	}
	if err := validate.Password(newPassword); err != nil {
		return err
	}

	a, err := s.accounts.Get(ctx, userName)
	if err != nil {
		return fmt.Errorf("account %s: %w", userName, err)
	}
	ok, err := s.hasher.Verify(oldPassword, a.PasswordHash)
	if err != nil {
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrorUnauthorized
	}
	if err := s.challenges.VerifyPurpose(ctx, userName, PurposeChangePassword, code); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accounts.SetPassword(ctx, userName, hash, false); err != nil {
		return fmt.Errorf("error saving password: %w", err)
	}

	s.log.Info(ctx, "password changed", "username", userName)
	return nil
}

// ResetPassword gives target a temporary password once target's challenge
// verifies, and returns it.
func (s *AccountService) ResetPassword(ctx context.Context, sess *session.Session, target, code string) (string, error) {
	if err := sess.Authorize(ctx, target); err != nil {
		return "", err
	}

	if _, err := s.accounts.Get(ctx, target); err != nil {
		return "", fmt.Errorf("account %s: %w", target, err)
	}
	if err := s.challenges.VerifyPurpose(ctx, target, PurposeResetPassword, code); err != nil {
		return "", err
	}

	password, err := temporaryPassword()
	if err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accounts.SetPassword(ctx, target, hash, true); err != nil {
		return "", fmt.Errorf("error saving password: %w", err)
	}

	s.log.Info(ctx, "password reset", "username", target)
	return password, nil
}

// ListAccounts returns every account to an administrator.
func (s *AccountService) ListAccounts(ctx context.Context, sess *session.Session) ([]*models.Account, error) {
	if err := sess.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	all, err := s.accounts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	return all, nil
}

func validateIdentity(req RegisterRequest) error {
	if err := validate.UserName(req.UserName); err != nil {
		return err
	}
	if err := validate.Email(req.Email); err != nil {
		return err
	}
	if err := validate.Phone(req.Phone); err != nil {
		return err
	}
	if req.Password != "" {
		return validate.Password(req.Password)
	}
	return nil
}

func temporaryPassword() (string, error) {
	p, err := common.RandomString(TemporaryPasswordAlphabet, TemporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("error generating password: %w", errors.Join(common.ErrorInternal, err))
	}
	return p, nil
}
