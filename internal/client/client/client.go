package client

import (
	"context"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/shopspring/decimal"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, userName, password, totpCode string) (*api.LoginResponse, error)
	Logout()
	LoggedIn() bool

	RequestChallenge(ctx context.Context, target, purpose string) (*api.Challenge, error)
	Account(ctx context.Context, target string) (*api.Account, error)
	UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.Account, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, code string) error
	ResetPassword(ctx context.Context, target, code string) (string, error)
	RegisterByAdmin(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	ListAccounts(ctx context.Context) ([]api.Account, error)

	BeginTOTP(ctx context.Context) (*api.BeginTOTPResponse, error)
	ConfirmTOTP(ctx context.Context, code string) error
	DisableTOTP(ctx context.Context, code string) error

	Wallet(ctx context.Context, walletID string) (*api.Wallet, error)
	History(ctx context.Context, walletID string) ([]api.Transaction, error)
	InitiateTransfer(ctx context.Context, req api.TransferRequest) (*api.InitiateTransferResponse, error)
	ConfirmTransfer(ctx context.Context, req api.TransferRequest) (*api.Transaction, error)
	TransferPoints(ctx context.Context, req api.TransferRequest) (*api.Transaction, error)
	RequestAdminCredit(ctx context.Context, walletID string, amount decimal.Decimal) (*api.Challenge, error)
	AdminCredit(ctx context.Context, walletID string, amount decimal.Decimal, code string) (*api.Transaction, error)
	CancelTransaction(ctx context.Context, txID string) (*api.Transaction, error)
}
