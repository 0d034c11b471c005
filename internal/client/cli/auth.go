package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/client/client"
	"github.com/dmitrijs2005/pointgate/internal/common"
)

// Challenge purposes requested by the console for account changes.
const (
	PurposeProfile        = "profile"
	PurposeChangePassword = "change_password"
	PurposeResetPassword  = "reset_password"
)

var errBadCredentials = errors.New("invalid username or password")

// Register prompts for the new account's identity and password. An empty
// password asks the server for a temporary one, which is shown once.
func (a *App) Register(ctx context.Context) error {
	req, err := a.readIdentity()
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return err
	}

	printlnFn("Registered", resp.Account.UserName, "with wallet", resp.WalletID)
	if resp.TemporaryPassword != "" {
		printlnFn("Temporary password:", resp.TemporaryPassword, "(change it after the first login)")
	}
	return nil
}

func (a *App) readIdentity() (api.RegisterRequest, error) {
	var req api.RegisterRequest
	var err error

	if req.UserName, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return req, err
	}
	if req.FullName, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return req, err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return req, err
	}
	if req.Phone, err = getSimpleText(a.reader, "Enter phone (optional)", a.out); err != nil {
		return req, err
	}
	return req, nil
}

// Login prompts for credentials. Accounts with time-based codes enabled are
// asked for a code when the server requires one.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.api.Login(ctx, userName, string(password), "")
	if errors.Is(err, common.ErrorInvalidInput) {
		code, cerr := getSimpleText(a.reader, "Enter time-based code from your authenticator", a.out)
		if cerr != nil {
			return cerr
		}
		resp, err = a.api.Login(ctx, userName, string(password), code)
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return errBadCredentials
	}
	if err != nil {
		return err
	}

	a.userName = userName
	a.isAdmin = resp.IsAdmin
	a.mustChange = resp.MustChangePassword

	printlnFn("Login successful")
	if a.mustChange {
		printlnFn("Your password is temporary. Change it now with 'changepw'.")
	}
	return nil
}

// Logout forgets the session token.
func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	a.isAdmin = false
	a.mustChange = false
	printlnFn("Logged out")
	return nil
}

// ChangePassword replaces the current user's password. It needs the old
// password and a one-time code.
func (a *App) ChangePassword(ctx context.Context) error {
	printlnFn("Current password")
	oldPassword, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	printlnFn("New password")
	newPassword, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	code, err := a.requestCode(ctx, a.userName, PurposeChangePassword)
	if err != nil {
		return err
	}

	if err := a.api.ChangePassword(ctx, string(oldPassword), string(newPassword), code); err != nil {
		return err
	}

	a.mustChange = false
	printlnFn("Password changed")
	return nil
}

// ResetPassword gives an account a temporary password. Administrators may
// reset any account; the code goes to the account being reset.
func (a *App) ResetPassword(ctx context.Context) error {
	target, err := getSimpleText(a.reader, "Enter username to reset (empty for yourself)", a.out)
	if err != nil {
		return err
	}
	if target == "" {
		target = a.userName
	}

	code, err := a.requestCode(ctx, target, PurposeResetPassword)
	if err != nil {
		return err
	}

	password, err := a.api.ResetPassword(ctx, target, code)
	if err != nil {
		return err
	}

	if target == a.userName {
		a.mustChange = true
	}
	printlnFn("Temporary password for", target+":", password)
	return nil
}

// TOTP enables or disables time-based login codes for the current user.
func (a *App) TOTP(ctx context.Context) error {
	action, err := getSimpleText(a.reader, "Type 'enable' or 'disable'", a.out)
	if err != nil {
		return err
	}

	switch action {
	case "enable":
		p, err := a.api.BeginTOTP(ctx)
		if err != nil {
			return err
		}
		printlnFn("Secret:", p.Secret)
		printlnFn("URL:", p.URL)

		code, err := getSimpleText(a.reader, "Enter the code shown by your authenticator", a.out)
		if err != nil {
			return err
		}
		if err := a.api.ConfirmTOTP(ctx, code); err != nil {
			return err
		}
		printlnFn("Time-based codes enabled")

	case "disable":
		code, err := getSimpleText(a.reader, "Enter the code shown by your authenticator", a.out)
		if err != nil {
			return err
		}
		if err := a.api.DisableTOTP(ctx, code); err != nil {
			return err
		}
		printlnFn("Time-based codes disabled")

	default:
		return fmt.Errorf("unknown action %q: %w", action, common.ErrorInvalidInput)
	}
	return nil
}

// requestCode asks the server to issue a challenge to target and reads the
// delivered code.
func (a *App) requestCode(ctx context.Context, target, purpose string) (string, error) {
	ch, err := a.api.RequestChallenge(ctx, target, purpose)
	if err != nil {
		return "", err
	}
	return a.readCode(ch)
}

func (a *App) readCode(ch *api.Challenge) (string, error) {
	printlnFn(fmt.Sprintf("A one-time code was sent to %s. It expires at %s.", ch.UserName, ch.ExpiresAt.Local().Format("15:04:05")))
	return getSimpleText(a.reader, "Enter code", a.out)
}
