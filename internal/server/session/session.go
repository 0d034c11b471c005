package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/common"
)

// Session tracks at most one identity. It belongs to one console run or one
// request and is not safe for concurrent use.
type Session struct {
	m        *Manager
	userName string
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.userName != ""
}

// CurrentIdentity returns the logged-in username or common.ErrorUnauthorized.
func (s *Session) CurrentIdentity() (string, error) {
	if !s.IsAuthenticated() {
		return "", common.ErrorUnauthorized
	}
	return s.userName, nil
}

// HasAdminRole reads the role from the identity store on every call, so a
// demotion takes effect on the next check.
func (s *Session) HasAdminRole(ctx context.Context) (bool, error) {
	userName, err := s.CurrentIdentity()
	if err != nil {
		return false, err
	}

	a, err := s.m.accounts.Get(ctx, userName)
	if err != nil {
		return false, fmt.Errorf("account %s: %w", userName, err)
	}
	return a.IsAdmin(), nil
}

// RequireAdmin fails with common.ErrorUnauthorized unless the session user
// is an administrator.
func (s *Session) RequireAdmin(ctx context.Context) error {
	ok, err := s.HasAdminRole(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorUnauthorized
	}
	return nil
}

// Authorize allows acting on target's records: users act on themselves,
// administrators on anyone.
func (s *Session) Authorize(ctx context.Context, target string) error {
	userName, err := s.CurrentIdentity()
	if err != nil {
		return err
	}
	if userName == target {
		return nil
	}
	return s.RequireAdmin(ctx)
}

// MustChangePassword reports whether the account still uses a temporary
// password.
func (s *Session) MustChangePassword(ctx context.Context) (bool, error) {
	userName, err := s.CurrentIdentity()
	if err != nil {
		return false, err
	}

	a, err := s.m.accounts.Get(ctx, userName)
	if err != nil {
		return false, fmt.Errorf("account %s: %w", userName, err)
	}
	return a.PasswordIsTemporary || a.MustChangeOnNextLogin, nil
}

func (s *Session) Logout() {
	s.userName = ""
}
