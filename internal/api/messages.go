package api

import (
	"time"

	"github.com/shopspring/decimal"
)

const ServiceName = "pointgate.PointGate"

// Method names of ServiceName.
const (
	MethodPing               = "Ping"
	MethodRegister           = "Register"
	MethodLogin              = "Login"
	MethodRequestChallenge   = "RequestChallenge"
	MethodGetAccount         = "GetAccount"
	MethodUpdateProfile      = "UpdateProfile"
	MethodChangePassword     = "ChangePassword"
	MethodResetPassword      = "ResetPassword"
	MethodRegisterByAdmin    = "RegisterByAdmin"
	MethodListAccounts       = "ListAccounts"
	MethodBeginTOTP          = "BeginTOTP"
	MethodConfirmTOTP        = "ConfirmTOTP"
	MethodDisableTOTP        = "DisableTOTP"
	MethodGetWallet          = "GetWallet"
	MethodHistory            = "History"
	MethodInitiateTransfer   = "InitiateTransfer"
	MethodConfirmTransfer    = "ConfirmTransfer"
	MethodTransferPoints     = "TransferPoints"
	MethodRequestAdminCredit = "RequestAdminCredit"
	MethodAdminCredit        = "AdminCredit"
	MethodCancelTransaction  = "CancelTransaction"
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):     true,
	FullMethod(MethodRegister): true,
	FullMethod(MethodLogin):    true,
}

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type Account struct {
	UserName           string     `json:"username"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	Role               string     `json:"role"`
	TOTPEnabled        bool       `json:"totp_enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}

type Wallet struct {
	ID      string          `json:"id"`
	Owner   string          `json:"owner"`
	Balance decimal.Decimal `json:"balance"`
	History []string        `json:"history"`
}

type Transaction struct {
	ID          string          `json:"id"`
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
}

// Challenge describes an issued challenge. The code itself never travels
// in a response.
type Challenge struct {
	UserName  string    `json:"username"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	UserName string `json:"username"`
	Password string `json:"password,omitempty"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type RegisterResponse struct {
	Account           Account `json:"account"`
	WalletID          string  `json:"wallet_id"`
	TemporaryPassword string  `json:"temporary_password,omitempty"`
}

type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type LoginResponse struct {
	AccessToken        string `json:"access_token"`
	MustChangePassword bool   `json:"must_change_password"`
	IsAdmin            bool   `json:"is_admin"`
}

type ChallengeRequest struct {
	Target  string `json:"target"`
	Purpose string `json:"purpose"`
}

type AccountRequest struct {
	// Target defaults to the caller.
	Target string `json:"target,omitempty"`
}

type UpdateProfileRequest struct {
	Target   string `json:"target,omitempty"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Code     string `json:"code"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
	Code        string `json:"code"`
}

type ResetPasswordRequest struct {
	Target string `json:"target"`
	Code   string `json:"code"`
}

type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}

type ListAccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type BeginTOTPResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type CodeRequest struct {
	Code string `json:"code"`
}

type WalletRequest struct {
	// WalletID defaults to the caller's first wallet.
	WalletID string `json:"wallet_id,omitempty"`
}

type HistoryResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type TransferRequest struct {
	Sender      string          `json:"sender"`
	Receiver    string          `json:"receiver"`
	Amount      decimal.Decimal `json:"amount"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type InitiateTransferResponse struct {
	Challenge   Challenge `json:"challenge"`
	Description string    `json:"description,omitempty"`
}

type AdminCreditRequest struct {
	WalletID string          `json:"wallet_id"`
	Amount   decimal.Decimal `json:"amount"`
	Code     string          `json:"code,omitempty"`
}

type CancelRequest struct {
	TransactionID string `json:"transaction_id"`
}

// TransactionResponse carries the recorded transaction. A failed transfer
// comes back as an error status; the failed record is then visible
// through History.
type TransactionResponse struct {
	Transaction Transaction `json:"transaction"`
}
