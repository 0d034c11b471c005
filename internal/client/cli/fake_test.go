package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/client/config"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/shopspring/decimal"
)

// ---- input stubs ----

// stubAnswers makes getSimpleText return answers in order, then "".
func stubAnswers(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", nil
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
}

// stubPasswords makes getPassword return passwords in order.
func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return []byte{}, nil
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

// capturePrintln records everything printed through printlnFn.
func capturePrintln(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		return fmt.Fprintln(&buf, a...)
	}
	t.Cleanup(func() { printlnFn = orig })
	return &buf
}

func newTestApp(f *fakeAPI) *App {
	return NewApp(&config.Config{OnlineCheckInterval: time.Hour}, f, logging.Nop(), strings.NewReader(""), io.Discard)
}

// ---- fake client ----

type fakeAPI struct {
	calls []string

	loginResp *api.LoginResponse
	loginErrs []error
	loginCode string

	registerReq  api.RegisterRequest
	registerResp *api.RegisterResponse

	challengeTarget  string
	challengePurpose string

	changeOld, changeNew, changeCode string

	wallet *api.Wallet

	transferReq api.TransferRequest
	transferErr error

	creditWallet string
	creditAmount decimal.Decimal
	creditCode   string

	err error
}

func (f *fakeAPI) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeAPI) challenge(user, purpose string) *api.Challenge {
	return &api.Challenge{UserName: user, Purpose: purpose, ExpiresAt: time.Now().Add(5 * time.Minute)}
}

func (f *fakeAPI) Close() error                 { f.record("close"); return nil }
func (f *fakeAPI) Ping(ctx context.Context) error { f.record("ping"); return f.err }

func (f *fakeAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	f.record("register")
	f.registerReq = req
	return f.registerResp, f.err
}

func (f *fakeAPI) Login(ctx context.Context, userName, password, totpCode string) (*api.LoginResponse, error) {
	f.record("login")
	f.loginCode = totpCode
	if len(f.loginErrs) > 0 {
		err := f.loginErrs[0]
		f.loginErrs = f.loginErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.loginResp, nil
}

func (f *fakeAPI) Logout()        { f.record("logout") }
func (f *fakeAPI) LoggedIn() bool { return f.loginResp != nil }

func (f *fakeAPI) RequestChallenge(ctx context.Context, target, purpose string) (*api.Challenge, error) {
	f.record("challenge")
	f.challengeTarget, f.challengePurpose = target, purpose
	return f.challenge(target, purpose), f.err
}

func (f *fakeAPI) Account(ctx context.Context, target string) (*api.Account, error) {
	f.record("account")
	return &api.Account{UserName: target}, f.err
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.Account, error) {
	f.record("update_profile")
	return &api.Account{UserName: req.Target, FullName: req.FullName, Email: req.Email}, f.err
}

func (f *fakeAPI) ChangePassword(ctx context.Context, oldPassword, newPassword, code string) error {
	f.record("change_password")
	f.changeOld, f.changeNew, f.changeCode = oldPassword, newPassword, code
	return f.err
}

func (f *fakeAPI) ResetPassword(ctx context.Context, target, code string) (string, error) {
	f.record("reset_password")
	return "Tmp-Password1", f.err
}

func (f *fakeAPI) RegisterByAdmin(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	f.record("register_by_admin")
	f.registerReq = req
	return f.registerResp, f.err
}

func (f *fakeAPI) ListAccounts(ctx context.Context) ([]api.Account, error) {
	f.record("list_accounts")
	return []api.Account{{UserName: "root", Role: "admin"}, {UserName: "alice", Role: "regular"}}, f.err
}

func (f *fakeAPI) BeginTOTP(ctx context.Context) (*api.BeginTOTPResponse, error) {
	f.record("begin_totp")
	return &api.BeginTOTPResponse{Secret: "JBSWY3DPEHPK3PXPJBSWY3DP", URL: "otpauth://totp/x"}, f.err
}

func (f *fakeAPI) ConfirmTOTP(ctx context.Context, code string) error {
	f.record("confirm_totp")
	return f.err
}

func (f *fakeAPI) DisableTOTP(ctx context.Context, code string) error {
	f.record("disable_totp")
	return f.err
}

func (f *fakeAPI) Wallet(ctx context.Context, walletID string) (*api.Wallet, error) {
	f.record("wallet")
	return f.wallet, f.err
}

func (f *fakeAPI) History(ctx context.Context, walletID string) ([]api.Transaction, error) {
	f.record("history")
	return []api.Transaction{{ID: "t1", Amount: decimal.NewFromInt(5), Status: "completed"}}, f.err
}

func (f *fakeAPI) InitiateTransfer(ctx context.Context, req api.TransferRequest) (*api.InitiateTransferResponse, error) {
	f.record("initiate_transfer")
	f.transferReq = req
	ch := f.challenge("alice", "transfer "+req.Sender+" -> "+req.Receiver+": "+req.Amount.String())
	return &api.InitiateTransferResponse{Challenge: *ch}, f.err
}

func (f *fakeAPI) ConfirmTransfer(ctx context.Context, req api.TransferRequest) (*api.Transaction, error) {
	f.record("confirm_transfer")
	f.transferReq = req
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return &api.Transaction{ID: "t1", Sender: req.Sender, Receiver: req.Receiver, Amount: req.Amount, Status: "completed"}, nil
}

func (f *fakeAPI) TransferPoints(ctx context.Context, req api.TransferRequest) (*api.Transaction, error) {
	f.record("transfer_points")
	f.transferReq = req
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return &api.Transaction{ID: "t2", Sender: req.Sender, Receiver: req.Receiver, Amount: req.Amount, Status: "completed"}, nil
}

func (f *fakeAPI) RequestAdminCredit(ctx context.Context, walletID string, amount decimal.Decimal) (*api.Challenge, error) {
	f.record("request_admin_credit")
	return f.challenge("root", "admin_credit "+walletID+": "+amount.String()), f.err
}

func (f *fakeAPI) AdminCredit(ctx context.Context, walletID string, amount decimal.Decimal, code string) (*api.Transaction, error) {
	f.record("admin_credit")
	f.creditWallet, f.creditAmount, f.creditCode = walletID, amount, code
	return &api.Transaction{ID: "t3", Sender: "ADMIN_CREDIT", Receiver: walletID, Amount: amount, Status: "completed"}, f.err
}

func (f *fakeAPI) CancelTransaction(ctx context.Context, txID string) (*api.Transaction, error) {
	f.record("cancel")
	return &api.Transaction{ID: txID, Status: "cancelled"}, f.err
}
