// Package models defines the server-side records kept by the identity store
// and the ledger.
package models

import "time"

type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

// Account is a registered identity. TOTPSecret is non-empty iff time-based
// codes are enabled for the account.
type Account struct {
	UserName              string
	PasswordHash          string
	FullName              string
	Email                 string
	Phone                 string
	Role                  Role
	PasswordIsTemporary   bool
	MustChangeOnNextLogin bool
	TOTPSecret            string
	CreatedAt             time.Time
	LastLoginAt           *time.Time
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) TOTPEnabled() bool {
	return a.TOTPSecret != ""
}

// Profile holds the fields a user may change through a gated profile update.
type Profile struct {
	FullName string
	Email    string
	Phone    string
}
