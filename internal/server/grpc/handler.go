package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/auth"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/dmitrijs2005/pointgate/internal/server/services"
	"github.com/dmitrijs2005/pointgate/internal/server/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.Empty) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.UserName)

	result, err := s.accounts.Register(ctx, registerRequest(req))
	if err != nil {
		return nil, err
	}

	return registerResponse(result), nil

}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {

	sess, err := s.sessions.Login(ctx, req.UserName, req.Password, req.TOTPCode)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		return nil, err
	}

	token, err := auth.GenerateToken(req.UserName, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, err
	}

	mustChange, err := sess.MustChangePassword(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin, err := sess.HasAdminRole(ctx)
	if err != nil {
		return nil, err
	}

	return &api.LoginResponse{AccessToken: token, MustChangePassword: mustChange, IsAdmin: isAdmin}, nil

}

func (s *GRPCServer) RequestChallenge(ctx context.Context, req *api.ChallengeRequest) (*api.Challenge, error) {
	sess := s.sessionFrom(ctx)
	target, err := targetOrSelf(sess, req.Target)
	if err != nil {
		return nil, err
	}

	h, err := s.accounts.RequestChallenge(ctx, sess, target, req.Purpose)
	if err != nil {
		return nil, err
	}
	return toChallenge(h), nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *api.AccountRequest) (*api.Account, error) {
	sess := s.sessionFrom(ctx)
	target, err := targetOrSelf(sess, req.Target)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.Account(ctx, sess, target)
	if err != nil {
		return nil, err
	}
	resp := toAccount(a)
	return &resp, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.Account, error) {
	sess := s.sessionFrom(ctx)
	target, err := targetOrSelf(sess, req.Target)
	if err != nil {
		return nil, err
	}

	a, err := s.accounts.UpdateProfile(ctx, sess, target, toProfile(req), req.Code)
	if err != nil {
		return nil, err
	}
	resp := toAccount(a)
	return &resp, nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *api.ChangePasswordRequest) (*api.Empty, error) {
	if err := s.accounts.ChangePassword(ctx, s.sessionFrom(ctx), req.OldPassword, req.NewPassword, req.Code); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.ResetPasswordRequest) (*api.ResetPasswordResponse, error) {
	password, err := s.accounts.ResetPassword(ctx, s.sessionFrom(ctx), req.Target, req.Code)
	if err != nil {
		return nil, err
	}
	return &api.ResetPasswordResponse{TemporaryPassword: password}, nil
}

func (s *GRPCServer) RegisterByAdmin(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	result, err := s.accounts.RegisterByAdmin(ctx, s.sessionFrom(ctx), registerRequest(req))
	if err != nil {
		return nil, err
	}
	return registerResponse(result), nil
}

func (s *GRPCServer) ListAccounts(ctx context.Context, req *api.Empty) (*api.ListAccountsResponse, error) {
	all, err := s.accounts.ListAccounts(ctx, s.sessionFrom(ctx))
	if err != nil {
		return nil, err
	}

	resp := &api.ListAccountsResponse{Accounts: make([]api.Account, 0, len(all))}
	for _, a := range all {
		resp.Accounts = append(resp.Accounts, toAccount(a))
	}
	return resp, nil
}

func (s *GRPCServer) BeginTOTP(ctx context.Context, req *api.Empty) (*api.BeginTOTPResponse, error) {
	p, err := s.sessions.BeginTOTP(ctx, s.sessionFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &api.BeginTOTPResponse{Secret: p.Secret, URL: p.URL}, nil
}

func (s *GRPCServer) ConfirmTOTP(ctx context.Context, req *api.CodeRequest) (*api.Empty, error) {
	if err := s.sessions.ConfirmTOTP(ctx, s.sessionFrom(ctx), req.Code); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) DisableTOTP(ctx context.Context, req *api.CodeRequest) (*api.Empty, error) {
	if err := s.sessions.DisableTOTP(ctx, s.sessionFrom(ctx), req.Code); err != nil {
		return nil, err
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) GetWallet(ctx context.Context, req *api.WalletRequest) (*api.Wallet, error) {
	w, err := s.wallet(ctx, s.sessionFrom(ctx), req.WalletID)
	if err != nil {
		return nil, err
	}
	return toWallet(w), nil
}

func (s *GRPCServer) History(ctx context.Context, req *api.WalletRequest) (*api.HistoryResponse, error) {
	sess := s.sessionFrom(ctx)
	w, err := s.wallet(ctx, sess, req.WalletID)
	if err != nil {
		return nil, err
	}

	history, err := s.wallets.History(ctx, sess, w.ID)
	if err != nil {
		return nil, err
	}

	resp := &api.HistoryResponse{Transactions: make([]api.Transaction, 0, len(history))}
	for _, t := range history {
		resp.Transactions = append(resp.Transactions, toTransaction(t))
	}
	return resp, nil
}

func (s *GRPCServer) InitiateTransfer(ctx context.Context, req *api.TransferRequest) (*api.InitiateTransferResponse, error) {
	h, err := s.wallets.InitiateTransfer(ctx, s.sessionFrom(ctx), req.Sender, req.Receiver, req.Amount, req.Description)
	if err != nil {
		return nil, err
	}
	return &api.InitiateTransferResponse{Challenge: *toChallenge(h), Description: h.Description}, nil
}

func (s *GRPCServer) ConfirmTransfer(ctx context.Context, req *api.TransferRequest) (*api.TransactionResponse, error) {
	return transactionResponse(s.wallets.ConfirmTransfer(ctx, s.sessionFrom(ctx), req.Sender, req.Receiver, req.Amount, req.Code, req.Description))
}

func (s *GRPCServer) TransferPoints(ctx context.Context, req *api.TransferRequest) (*api.TransactionResponse, error) {
	return transactionResponse(s.wallets.TransferPoints(ctx, s.sessionFrom(ctx), req.Sender, req.Receiver, req.Amount, req.Code, req.Description))
}

func (s *GRPCServer) RequestAdminCredit(ctx context.Context, req *api.AdminCreditRequest) (*api.Challenge, error) {
	h, err := s.wallets.RequestAdminCredit(ctx, s.sessionFrom(ctx), req.WalletID, req.Amount)
	if err != nil {
		return nil, err
	}
	return toChallenge(h), nil
}

func (s *GRPCServer) AdminCredit(ctx context.Context, req *api.AdminCreditRequest) (*api.TransactionResponse, error) {
	return transactionResponse(s.wallets.AdminCredit(ctx, s.sessionFrom(ctx), req.WalletID, req.Amount, req.Code))
}

func (s *GRPCServer) CancelTransaction(ctx context.Context, req *api.CancelRequest) (*api.TransactionResponse, error) {
	return transactionResponse(s.wallets.CancelTransaction(ctx, s.sessionFrom(ctx), req.TransactionID))
}

// wallet resolves id, or the caller's own wallet when id is empty.
func (s *GRPCServer) wallet(ctx context.Context, sess *session.Session, id string) (*models.Wallet, error) {
	if id == "" {
		return s.wallets.MyWallet(ctx, sess)
	}
	return s.wallets.Wallet(ctx, sess, id)
}

func targetOrSelf(sess *session.Session, target string) (string, error) {
	if target != "" {
		return target, nil
	}
	return sess.CurrentIdentity()
}

// transactionResponse drops the transaction of a failed call; the failed
// record stays reachable through History.
func transactionResponse(t *models.Transaction, err error) (*api.TransactionResponse, error) {
	if err != nil {
		return nil, err
	}
	return &api.TransactionResponse{Transaction: toTransaction(t)}, nil
}

func registerRequest(req *api.RegisterRequest) services.RegisterRequest {
	return services.RegisterRequest{
		UserName: req.UserName,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
}

func registerResponse(r *services.RegisterResult) *api.RegisterResponse {
	return &api.RegisterResponse{
		Account:           toAccount(r.Account),
		WalletID:          r.Wallet.ID,
		TemporaryPassword: r.TemporaryPassword,
	}
}
