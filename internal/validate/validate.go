// Package validate checks user-supplied identity fields before they reach
// the account store.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/pointgate/internal/common"
)

// Usernames start with a letter, may contain letters, digits, '.', '_' and
// '-', and are 3..32 characters long.
var userNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]{2,31}$`)

// Phone numbers are optional; when present: optional '+', then 7..15 digits,
// spaces and dashes allowed between them.
var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 -]{5,18}[0-9]$`)

// UserName returns ErrorInvalidInput if name is not an acceptable username.
func UserName(name string) error {
	if !userNameRe.MatchString(name) {
		return fmt.Errorf("username %q: %w", name, common.ErrorInvalidInput)
	}
	return nil
}

// Email accepts a bare address (no display name).
func Email(addr string) error {
	a, err := mail.ParseAddress(addr)
	if err != nil || a.Address != addr || !strings.Contains(addr[strings.LastIndex(addr, "@")+1:], ".") {
		return fmt.Errorf("email %q: %w", addr, common.ErrorInvalidInput)
	}
	return nil
}

// Phone allows an empty value.
func Phone(p string) error {
	if p == "" {
		return nil
	}
	if !phoneRe.MatchString(p) {
		return fmt.Errorf("phone %q: %w", p, common.ErrorInvalidInput)
	}
	return nil
}

// Password enforces the minimum length for user-chosen passwords.
func Password(p string) error {
	if len(p) < 8 {
		return fmt.Errorf("password too short: %w", common.ErrorInvalidInput)
	}
	return nil
}
