package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pointgate/internal/client/client"
	"github.com/dmitrijs2005/pointgate/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	mustChangePassword() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	TOTP(ctx context.Context) error

	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	AddUser(ctx context.Context) error
	Users(ctx context.Context) error

	Wallet(ctx context.Context) error
	History(ctx context.Context) error
	Transfer(ctx context.Context) error
	Send(ctx context.Context) error
	Credit(ctx context.Context) error
	Cancel(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: profile, editprofile, changepw, resetpw, totp, wallet, history, " +
		"transfer, send, cancel, adduser, users, credit, logout, exit"
	helpMustChange = "Available commands: changepw, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the PointGate console.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done or
// when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn). Commands depend on
// the session state:
//
//	Not logged in:     register, login
//	Temporary password: changepw, logout
//	Logged in:         profile, editprofile, changepw, resetpw, totp,
//	                   wallet, history, transfer, send, cancel,
//	                   adduser, users, credit (administrators), logout
//
// Errors returned by command handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("pg> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if cmd == "help" {
			switch {
			case !a.isLoggedIn():
				printlnFn(helpLoggedOut)
			case a.mustChangePassword():
				printlnFn(helpMustChange)
			default:
				printlnFn(helpLoggedIn)
			}
			continue
		}

		handler, ok := lookup(a, cmd)
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !allowed(a, cmd) {
			continue
		}

		report(handler(ctx))
	}
}

func lookup(a execIface, cmd string) (func(context.Context) error, bool) {
	commands := map[string]func(context.Context) error{
		"register":    a.Register,
		"login":       a.Login,
		"logout":      a.Logout,
		"changepw":    a.ChangePassword,
		"resetpw":     a.ResetPassword,
		"totp":        a.TOTP,
		"profile":     a.Profile,
		"editprofile": a.UpdateProfile,
		"adduser":     a.AddUser,
		"users":       a.Users,
		"wallet":      a.Wallet,
		"history":     a.History,
		"transfer":    a.Transfer,
		"send":        a.Send,
		"credit":      a.Credit,
		"cancel":      a.Cancel,
	}
	h, ok := commands[cmd]
	return h, ok
}

// allowed gates cmd on the session state and tells the user why not.
func allowed(a execIface, cmd string) bool {
	switch cmd {
	case "register", "login":
		if a.isLoggedIn() {
			printlnFn("Already logged in; 'logout' first")
			return false
		}
		return true
	}

	if !a.isLoggedIn() {
		printlnFn("Please 'login' first")
		return false
	}
	if a.mustChangePassword() && cmd != "changepw" && cmd != "logout" {
		printlnFn("Your password is temporary. Change it with 'changepw' first")
		return false
	}
	return true
}

func report(err error) {
	if err == nil {
		return
	}
	printlnFn("Error:", describeError(err))
}

// describeError turns the sentinels a command may fail with into short
// user-facing text.
func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, client.ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, common.ErrNoActiveChallenge):
		return "no code was requested, or it was already used"
	case errors.Is(err, common.ErrChallengeExpired):
		return "the code has expired, start again to get a new one"
	case errors.Is(err, common.ErrChallengeMismatch):
		return "wrong code"
	case errors.Is(err, common.ErrInsufficientBalance):
		return "insufficient balance, the failed transfer was recorded"
	case errors.Is(err, common.ErrAlreadyProvisioned):
		return "time-based codes are already enabled"
	case errors.Is(err, common.ErrSecretNotProvisioned):
		return "time-based codes are not enabled"
	case errors.Is(err, common.ErrorUnauthorized):
		return "not permitted"
	case errors.Is(err, common.ErrorNotFound):
		return "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return "already exists"
	default:
		return err.Error()
	}
}
