package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/api"
)

// Profile shows an account. Administrators may look at any account.
func (a *App) Profile(ctx context.Context) error {
	target := ""
	if a.isAdmin {
		var err error
		if target, err = getSimpleText(a.reader, "Enter username (empty for yourself)", a.out); err != nil {
			return err
		}
	}

	acc, err := a.api.Account(ctx, target)
	if err != nil {
		return err
	}
	printAccount(acc)
	return nil
}

// UpdateProfile replaces name, e-mail and phone after a one-time code.
func (a *App) UpdateProfile(ctx context.Context) error {
	target := a.userName
	if a.isAdmin {
		t, err := getSimpleText(a.reader, "Enter username (empty for yourself)", a.out)
		if err != nil {
			return err
		}
		if t != "" {
			target = t
		}
	}

	req := api.UpdateProfileRequest{Target: target}
	var err error
	if req.FullName, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if req.Phone, err = getSimpleText(a.reader, "Enter phone (optional)", a.out); err != nil {
		return err
	}

	if req.Code, err = a.requestCode(ctx, target, PurposeProfile); err != nil {
		return err
	}

	acc, err := a.api.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	printlnFn("Profile updated")
	printAccount(acc)
	return nil
}

// AddUser registers an account on an administrator's behalf. The server
// generates the password.
func (a *App) AddUser(ctx context.Context) error {
	req, err := a.readIdentity()
	if err != nil {
		return err
	}

	resp, err := a.api.RegisterByAdmin(ctx, req)
	if err != nil {
		return err
	}
	printlnFn("Registered", resp.Account.UserName, "with wallet", resp.WalletID)
	printlnFn("Temporary password:", resp.TemporaryPassword)
	return nil
}

// Users lists every account.
func (a *App) Users(ctx context.Context) error {
	all, err := a.api.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, acc := range all {
		printlnFn(fmt.Sprintf("%-20s %-8s %s", acc.UserName, acc.Role, acc.Email))
	}
	printlnFn(fmt.Sprintf("%d account(s)", len(all)))
	return nil
}

func printAccount(acc *api.Account) {
	printlnFn("Username:  ", acc.UserName)
	printlnFn("Full name: ", acc.FullName)
	printlnFn("Email:     ", acc.Email)
	if acc.Phone != "" {
		printlnFn("Phone:     ", acc.Phone)
	}
	printlnFn("Role:      ", acc.Role)
	printlnFn("TOTP:      ", acc.TOTPEnabled)
	if acc.LastLoginAt != nil {
		printlnFn("Last login:", acc.LastLoginAt.Local().Format("2006-01-02 15:04:05"))
	}
}
