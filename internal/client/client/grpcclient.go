package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/shopspring/decimal"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultCallTimeout bounds every call that arrives without a deadline.
const DefaultCallTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	callTimeout time.Duration

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(t string) {
	s.mu.Lock()
	s.accessToken = t
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if t := s.token(); t != "" && !api.PublicMethods[method] {
		ctx = withAccessToken(ctx, t)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewPointGateClient connects to endpointURL. Extra dial options come after
// the defaults, so callers can swap the dialer or credentials.
func NewPointGateClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, callTimeout: DefaultCallTimeout}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// SetCallTimeout changes the deadline applied to calls without one.
// Non-positive values are ignored.
func (s *GRPCClient) SetCallTimeout(d time.Duration) {
	if d > 0 {
		s.callTimeout = d
	}
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	return s.mapError(s.conn.Invoke(ctx, api.FullMethod(method), req, resp))
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	var resp api.PingResponse
	if err := s.invoke(ctx, api.MethodPing, &api.Empty{}, &resp); err != nil {
		return err
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := s.invoke(ctx, api.MethodRegister, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login keeps the returned access token for later calls.
func (s *GRPCClient) Login(ctx context.Context, userName, password, totpCode string) (*api.LoginResponse, error) {

	req := &api.LoginRequest{UserName: userName, Password: password, TOTPCode: totpCode}

	var resp api.LoginResponse
	if err := s.invoke(ctx, api.MethodLogin, req, &resp); err != nil {
		return nil, err
	}

	s.setToken(resp.AccessToken)

	return &resp, nil

}

func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

func (s *GRPCClient) RequestChallenge(ctx context.Context, target, purpose string) (*api.Challenge, error) {
	var resp api.Challenge
	if err := s.invoke(ctx, api.MethodRequestChallenge, &api.ChallengeRequest{Target: target, Purpose: purpose}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Account(ctx context.Context, target string) (*api.Account, error) {
	var resp api.Account
	if err := s.invoke(ctx, api.MethodGetAccount, &api.AccountRequest{Target: target}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.Account, error) {
	var resp api.Account
	if err := s.invoke(ctx, api.MethodUpdateProfile, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword, code string) error {
	req := &api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword, Code: code}
	return s.invoke(ctx, api.MethodChangePassword, req, &api.Empty{})
}

func (s *GRPCClient) ResetPassword(ctx context.Context, target, code string) (string, error) {
	var resp api.ResetPasswordResponse
	if err := s.invoke(ctx, api.MethodResetPassword, &api.ResetPasswordRequest{Target: target, Code: code}, &resp); err != nil {
		return "", err
	}
	return resp.TemporaryPassword, nil
}

func (s *GRPCClient) RegisterByAdmin(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := s.invoke(ctx, api.MethodRegisterByAdmin, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListAccounts(ctx context.Context) ([]api.Account, error) {
	var resp api.ListAccountsResponse
	if err := s.invoke(ctx, api.MethodListAccounts, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) BeginTOTP(ctx context.Context) (*api.BeginTOTPResponse, error) {
	var resp api.BeginTOTPResponse
	if err := s.invoke(ctx, api.MethodBeginTOTP, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ConfirmTOTP(ctx context.Context, code string) error {
	return s.invoke(ctx, api.MethodConfirmTOTP, &api.CodeRequest{Code: code}, &api.Empty{})
}

func (s *GRPCClient) DisableTOTP(ctx context.Context, code string) error {
	return s.invoke(ctx, api.MethodDisableTOTP, &api.CodeRequest{Code: code}, &api.Empty{})
}

// Wallet returns walletID, or the caller's own wallet when walletID is empty.
func (s *GRPCClient) Wallet(ctx context.Context, walletID string) (*api.Wallet, error) {
	var resp api.Wallet
	if err := s.invoke(ctx, api.MethodGetWallet, &api.WalletRequest{WalletID: walletID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) History(ctx context.Context, walletID string) ([]api.Transaction, error) {
	var resp api.HistoryResponse
	if err := s.invoke(ctx, api.MethodHistory, &api.WalletRequest{WalletID: walletID}, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (s *GRPCClient) InitiateTransfer(ctx context.Context, req api.TransferRequest) (*api.InitiateTransferResponse, error) {
	var resp api.InitiateTransferResponse
	if err := s.invoke(ctx, api.MethodInitiateTransfer, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ConfirmTransfer(ctx context.Context, req api.TransferRequest) (*api.Transaction, error) {
	return s.transaction(ctx, api.MethodConfirmTransfer, &req)
}

func (s *GRPCClient) TransferPoints(ctx context.Context, req api.TransferRequest) (*api.Transaction, error) {
	return s.transaction(ctx, api.MethodTransferPoints, &req)
}

func (s *GRPCClient) RequestAdminCredit(ctx context.Context, walletID string, amount decimal.Decimal) (*api.Challenge, error) {
	var resp api.Challenge
	if err := s.invoke(ctx, api.MethodRequestAdminCredit, &api.AdminCreditRequest{WalletID: walletID, Amount: amount}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) AdminCredit(ctx context.Context, walletID string, amount decimal.Decimal, code string) (*api.Transaction, error) {
	return s.transaction(ctx, api.MethodAdminCredit, &api.AdminCreditRequest{WalletID: walletID, Amount: amount, Code: code})
}

func (s *GRPCClient) CancelTransaction(ctx context.Context, txID string) (*api.Transaction, error) {
	return s.transaction(ctx, api.MethodCancelTransaction, &api.CancelRequest{TransactionID: txID})
}

func (s *GRPCClient) transaction(ctx context.Context, method string, req any) (*api.Transaction, error) {
	var resp api.TransactionResponse
	if err := s.invoke(ctx, method, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	st, _ := status.FromError(err)
	re := &RemoteError{Code: st.Code(), Message: st.Message()}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		re.Err = ErrUnavailable
		return re
	case codes.Unauthenticated:
		re.Err = ErrUnauthorized
		return re
	}

	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == api.ErrorDomain {
			re.Err = api.ErrorForReason(info.Reason)
		}
	}
	if re.Err == nil {
		re.Err = common.ErrorInternal
	}
	return re
}
