package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/server/ledger"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/dmitrijs2005/pointgate/internal/server/session"
	"github.com/shopspring/decimal"
)

// WalletService puts the permission gate in front of the ledger: wallets
// are visible to their owner and to administrators.
type WalletService struct {
	ledger *ledger.Coordinator
}

func NewWalletService(l *ledger.Coordinator) *WalletService {
	return &WalletService{ledger: l}
}

// MyWallet returns the session user's first wallet.
func (s *WalletService) MyWallet(ctx context.Context, sess *session.Session) (*models.Wallet, error) {
	userName, err := sess.CurrentIdentity()
	if err != nil {
		return nil, err
	}
	return s.ledger.WalletByOwner(ctx, userName)
}

func (s *WalletService) Wallet(ctx context.Context, sess *session.Session, walletID string) (*models.Wallet, error) {
	w, err := s.ledger.Wallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if err := sess.Authorize(ctx, w.OwnerUserName); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WalletService) History(ctx context.Context, sess *session.Session, walletID string) ([]*models.Transaction, error) {
	if _, err := s.Wallet(ctx, sess, walletID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, walletID)
}

func (s *WalletService) InitiateTransfer(ctx context.Context, sess *session.Session, sender, receiver string, amount decimal.Decimal, description string) (*ledger.ChallengeHandle, error) {
	if err := s.authorizeSender(ctx, sess, sender); err != nil {
		return nil, err
	}
	return s.ledger.InitiateTransfer(ctx, sender, receiver, amount, description)
}

func (s *WalletService) ConfirmTransfer(ctx context.Context, sess *session.Session, sender, receiver string, amount decimal.Decimal, code, description string) (*models.Transaction, error) {
	if err := s.authorizeSender(ctx, sess, sender); err != nil {
		return nil, err
	}
	return s.ledger.ConfirmTransfer(ctx, sender, receiver, amount, code, description)
}

func (s *WalletService) TransferPoints(ctx context.Context, sess *session.Session, sender, receiver string, amount decimal.Decimal, code, description string) (*models.Transaction, error) {
	if err := s.authorizeSender(ctx, sess, sender); err != nil {
		return nil, err
	}
	return s.ledger.TransferPoints(ctx, sender, receiver, amount, code, description)
}

func (s *WalletService) RequestAdminCredit(ctx context.Context, sess *session.Session, walletID string, amount decimal.Decimal) (*ledger.ChallengeHandle, error) {
	admin, err := s.admin(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.ledger.RequestAdminCredit(ctx, admin, walletID, amount)
}

func (s *WalletService) AdminCredit(ctx context.Context, sess *session.Session, walletID string, amount decimal.Decimal, code string) (*models.Transaction, error) {
	admin, err := s.admin(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.ledger.AdminCredit(ctx, admin, walletID, amount, code)
}

// CancelTransaction is open to administrators and the owner of the sending
// wallet.
func (s *WalletService) CancelTransaction(ctx context.Context, sess *session.Session, txID string) (*models.Transaction, error) {
	t, err := s.ledger.Transaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if t.IsAdminCredit() {
		if err := sess.RequireAdmin(ctx); err != nil {
			return nil, err
		}
	} else if err := s.authorizeSender(ctx, sess, t.SenderWalletID); err != nil {
		return nil, err
	}
	return s.ledger.CancelTransaction(ctx, txID)
}

func (s *WalletService) authorizeSender(ctx context.Context, sess *session.Session, sender string) error {
	if !sess.IsAuthenticated() {
		_, err := sess.CurrentIdentity()
		return err
	}
	w, err := s.ledger.Wallet(ctx, sender)
	if err != nil {
		return fmt.Errorf("sender wallet %s: %w", sender, err)
	}
	return sess.Authorize(ctx, w.OwnerUserName)
}

func (s *WalletService) admin(ctx context.Context, sess *session.Session) (string, error) {
	if err := sess.RequireAdmin(ctx); err != nil {
		return "", err
	}
	return sess.CurrentIdentity()
}
