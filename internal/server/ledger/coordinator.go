// Package ledger moves points between wallets. Every mutation is gated by a
// one-time challenge and recorded as a transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PurposeTransfer    = "transfer"
	PurposeAdminCredit = "admin_credit"
)

// Transfer kinds reported to the Observer.
const (
	KindTransfer    = "transfer"
	KindAdminCredit = "admin_credit"
)

// TransferPurpose is the challenge purpose bound to one transfer.
func TransferPurpose(sender, receiver string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s -> %s: %s", PurposeTransfer, sender, receiver, amount.String())
}

// AdminCreditPurpose is the challenge purpose bound to one admin credit.
func AdminCreditPurpose(walletID string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s: %s", PurposeAdminCredit, walletID, amount.String())
}

// Credentials issues and checks the challenges that gate ledger mutations.
// *otp.Engine implements it.
type Credentials interface {
	Issue(ctx context.Context, userName, purpose string) (*models.Challenge, error)
	VerifyPurpose(ctx context.Context, userName, purpose, code string) error
	Now() time.Time
}

type Observer interface {
	TransferRecorded(kind, status string)
}

type nopObserver struct{}

func (nopObserver) TransferRecorded(string, string) {}

// ChallengeHandle describes an issued challenge without its code, which
// only travels through the deliverer.
type ChallengeHandle struct {
	UserName    string
	Purpose     string
	Description string
	ExpiresAt   time.Time
}

type Coordinator struct {
	repos    repomanager.RepositoryManager
	creds    Credentials
	locks    *lockSet
	log      logging.Logger
	observer Observer
}

type Option func(*Coordinator)

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l.With("module", "ledger") }
}

func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

func NewCoordinator(repos repomanager.RepositoryManager, creds Credentials, opts ...Option) *Coordinator {
	c := &Coordinator{
		repos:    repos,
		creds:    creds,
		locks:    newLockSet(),
		log:      logging.Nop(),
		observer: nopObserver{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateWallet opens a wallet for owner with an initial balance.
func (c *Coordinator) CreateWallet(ctx context.Context, owner string, initial decimal.Decimal) (*models.Wallet, error) {
	if owner == "" || initial.IsNegative() {
		return nil, fmt.Errorf("create wallet: %w", common.ErrorInvalidInput)
	}

	w := &models.Wallet{
		ID:            uuid.NewString(),
		OwnerUserName: owner,
		Balance:       initial,
	}
	if err := c.repos.Repositories().Wallets.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	c.log.Info(ctx, "wallet created", "wallet_id", w.ID, "owner", owner)
	return w, nil
}

// Wallet returns a snapshot of the wallet. It waits for in-flight
// transfers on the wallet so it never sees one half applied.
func (c *Coordinator) Wallet(ctx context.Context, id string) (*models.Wallet, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	w, err := c.repos.Repositories().Wallets.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("wallet %s: %w", id, err)
	}
	return w, nil
}

// WalletByOwner returns a snapshot of the first wallet created for owner.
func (c *Coordinator) WalletByOwner(ctx context.Context, owner string) (*models.Wallet, error) {
	w, err := c.repos.Repositories().Wallets.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("wallet of %s: %w", owner, err)
	}
	return c.Wallet(ctx, w.ID)
}

func (c *Coordinator) Balance(ctx context.Context, id string) (decimal.Decimal, error) {
	w, err := c.Wallet(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// History lists transactions sent or received by the wallet, newest last.
// Failed and cancelled attempts are included.
func (c *Coordinator) History(ctx context.Context, id string) ([]*models.Transaction, error) {
	if _, err := c.Wallet(ctx, id); err != nil {
		return nil, err
	}

	txs, err := c.repos.Repositories().Transactions.ForWallet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", id, err)
	}
	return txs, nil
}

// Transaction returns one stored transaction.
func (c *Coordinator) Transaction(ctx context.Context, id string) (*models.Transaction, error) {
	t, err := c.repos.Repositories().Transactions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}
	return t, nil
}

// InitiateTransfer issues a challenge to the sender's owner for this exact
// transfer. The balance check is advisory: nothing is reserved and nothing
// is recorded.
func (c *Coordinator) InitiateTransfer(ctx context.Context, sender, receiver string, amount decimal.Decimal, description string) (*ChallengeHandle, error) {
	if err := checkTransfer(sender, receiver, amount); err != nil {
		return nil, err
	}

	sw, _, err := c.loadPair(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}
	if sw.Balance.LessThan(amount) {
		return nil, fmt.Errorf("wallet %s: %w", sender, common.ErrInsufficientBalance)
	}

	ch, err := c.creds.Issue(ctx, sw.OwnerUserName, TransferPurpose(sender, receiver, amount))
	if err != nil {
		return nil, fmt.Errorf("issue transfer challenge: %w", err)
	}

	c.log.Info(ctx, "transfer initiated", "sender", sender, "receiver", receiver, "amount", amount.String())
	return &ChallengeHandle{
		UserName:    ch.UserName,
		Purpose:     ch.Purpose,
		Description: description,
		ExpiresAt:   ch.ExpiresAt,
	}, nil
}

// ConfirmTransfer completes a transfer started by InitiateTransfer. The
// code must come from the challenge issued for the same sender, receiver
// and amount.
//
// A rejected code leaves no record. Once the code is accepted a
// transaction is always recorded: when the balance no longer covers the
// amount the transaction is returned with StatusFailed together with
// common.ErrInsufficientBalance.
func (c *Coordinator) ConfirmTransfer(ctx context.Context, sender, receiver string, amount decimal.Decimal, code, description string) (*models.Transaction, error) {
	return c.transfer(ctx, sender, receiver, amount, TransferPurpose(sender, receiver, amount), code, description)
}

// TransferPoints is the one-shot transfer. The code must come from a
// challenge issued to the sender's owner with PurposeTransfer.
func (c *Coordinator) TransferPoints(ctx context.Context, sender, receiver string, amount decimal.Decimal, code, description string) (*models.Transaction, error) {
	return c.transfer(ctx, sender, receiver, amount, PurposeTransfer, code, description)
}

func (c *Coordinator) transfer(ctx context.Context, sender, receiver string, amount decimal.Decimal, purpose, code, description string) (*models.Transaction, error) {
	if err := checkTransfer(sender, receiver, amount); err != nil {
		return nil, err
	}

	sw, _, err := c.loadPair(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}
	if err := c.creds.VerifyPurpose(ctx, sw.OwnerUserName, purpose, code); err != nil {
		return nil, fmt.Errorf("verify transfer challenge: %w", err)
	}

	t := c.newTransaction(sender, receiver, amount, description)
	return c.execute(ctx, KindTransfer, t)
}

// RequestAdminCredit issues a challenge to adminUserName for crediting
// amount to walletID.
func (c *Coordinator) RequestAdminCredit(ctx context.Context, adminUserName, walletID string, amount decimal.Decimal) (*ChallengeHandle, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := c.checkAdmin(ctx, adminUserName); err != nil {
		return nil, err
	}
	if _, err := c.repos.Repositories().Wallets.Get(ctx, walletID); err != nil {
		return nil, fmt.Errorf("wallet %s: %w", walletID, err)
	}

	ch, err := c.creds.Issue(ctx, adminUserName, AdminCreditPurpose(walletID, amount))
	if err != nil {
		return nil, fmt.Errorf("issue admin credit challenge: %w", err)
	}
	return &ChallengeHandle{UserName: ch.UserName, Purpose: ch.Purpose, ExpiresAt: ch.ExpiresAt}, nil
}

// AdminCredit adds amount to walletID from the reserved admin sender. The
// code must come from RequestAdminCredit for the same wallet and amount.
func (c *Coordinator) AdminCredit(ctx context.Context, adminUserName, walletID string, amount decimal.Decimal, code string) (*models.Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := c.checkAdmin(ctx, adminUserName); err != nil {
		return nil, err
	}
	if _, err := c.repos.Repositories().Wallets.Get(ctx, walletID); err != nil {
		return nil, fmt.Errorf("wallet %s: %w", walletID, err)
	}
	if err := c.creds.VerifyPurpose(ctx, adminUserName, AdminCreditPurpose(walletID, amount), code); err != nil {
		return nil, fmt.Errorf("verify admin credit challenge: %w", err)
	}

	t := c.newTransaction(models.AdminSender, walletID, amount, "admin credit by "+adminUserName)
	return c.execute(ctx, KindAdminCredit, t)
}

// CancelTransaction moves a pending transaction to StatusCancelled. Any
// other status yields common.ErrorInvalidInput.
func (c *Coordinator) CancelTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	t, err := c.repos.Repositories().Transactions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}

	unlock := c.locks.Lock(walletIDs(t)...)
	defer unlock()

	err = c.repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		cur, err := r.Transactions.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := cur.Transition(models.StatusCancelled); err != nil {
			return err
		}
		t = cur
		return r.Transactions.Save(ctx, cur)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel transaction %s: %w", id, err)
	}

	c.observer.TransferRecorded(kindOf(t), string(t.Status))
	c.log.Info(ctx, "transaction cancelled", "transaction_id", id)
	return t, nil
}

func (c *Coordinator) newTransaction(sender, receiver string, amount decimal.Decimal, description string) *models.Transaction {
	return &models.Transaction{
		ID:               uuid.NewString(),
		SenderWalletID:   sender,
		ReceiverWalletID: receiver,
		Amount:           amount,
		Timestamp:        c.creds.Now(),
		Description:      description,
		Status:           models.StatusPending,
	}
}

// execute records t as pending and applies it under the wallet locks in one
// storage transaction. A short balance commits t as failed.
func (c *Coordinator) execute(ctx context.Context, kind string, t *models.Transaction) (*models.Transaction, error) {
	unlock := c.locks.Lock(walletIDs(t)...)
	defer unlock()

	var applyErr error
	err := c.repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Transactions.Create(ctx, t); err != nil {
			return err
		}

		applyErr = apply(ctx, r, t)
		if errors.Is(applyErr, common.ErrInsufficientBalance) {
			if err := t.Transition(models.StatusFailed); err != nil {
				return err
			}
			return r.Transactions.Save(ctx, t)
		}
		return applyErr
	})

	if err != nil {
		c.recordFailure(ctx, t)
		c.observer.TransferRecorded(kind, string(models.StatusFailed))
		c.log.Error(ctx, "transfer aborted", "transaction_id", t.ID, "error", err)
		return nil, fmt.Errorf("apply transaction %s: %w", t.ID, err)
	}

	c.observer.TransferRecorded(kind, string(t.Status))
	if applyErr != nil {
		c.log.Info(ctx, "transfer failed", "transaction_id", t.ID, "sender", t.SenderWalletID, "amount", t.Amount.String())
		return t, fmt.Errorf("transaction %s: %w", t.ID, applyErr)
	}

	c.log.Info(ctx, "transfer completed", "transaction_id", t.ID, "sender", t.SenderWalletID, "receiver", t.ReceiverWalletID, "amount", t.Amount.String())
	return t, nil
}

// apply moves t.Amount and marks t completed. Wallets are read in sorted
// order so row locks are taken in the same order as the in-process locks.
func apply(ctx context.Context, r repomanager.Repositories, t *models.Transaction) error {
	ids := walletIDs(t)
	wallets := make(map[string]*models.Wallet, len(ids))
	for _, id := range ids {
		w, err := r.Wallets.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("wallet %s: %w", id, err)
		}
		wallets[id] = w
	}

	if !t.IsAdminCredit() {
		if err := wallets[t.SenderWalletID].Deduct(t.Amount); err != nil {
			return err
		}
	}
	if err := wallets[t.ReceiverWalletID].Credit(t.Amount); err != nil {
		return err
	}
	if err := t.Transition(models.StatusCompleted); err != nil {
		return err
	}

	for _, id := range ids {
		w := wallets[id]
		w.AppendHistory(t.ID)
		if err := r.Wallets.Save(ctx, w); err != nil {
			return fmt.Errorf("save wallet %s: %w", id, err)
		}
	}
	return r.Transactions.Save(ctx, t)
}

// recordFailure persists t as failed after its storage transaction was
// rolled back or broke off. Errors are only logged.
func (c *Coordinator) recordFailure(ctx context.Context, t *models.Transaction) {
	failed := *t
	failed.Status = models.StatusFailed

	txs := c.repos.Repositories().Transactions
	err := txs.Create(ctx, &failed)
	if errors.Is(err, common.ErrorAlreadyExists) {
		err = txs.Save(ctx, &failed)
	}
	if err != nil {
		c.log.Error(ctx, "record failed transaction", "transaction_id", t.ID, "error", err)
	}
}

func (c *Coordinator) checkAdmin(ctx context.Context, userName string) error {
	a, err := c.repos.Repositories().Accounts.Get(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return fmt.Errorf("account %s: %w", userName, err)
	}
	if !a.IsAdmin() {
		return common.ErrorUnauthorized
	}
	return nil
}

func (c *Coordinator) loadPair(ctx context.Context, sender, receiver string) (*models.Wallet, *models.Wallet, error) {
	wallets := c.repos.Repositories().Wallets

	sw, err := wallets.Get(ctx, sender)
	if err != nil {
		return nil, nil, fmt.Errorf("sender wallet %s: %w", sender, err)
	}
	rw, err := wallets.Get(ctx, receiver)
	if err != nil {
		return nil, nil, fmt.Errorf("receiver wallet %s: %w", receiver, err)
	}
	return sw, rw, nil
}

// AmountPlaces is the number of fractional digits a stored amount keeps.
const AmountPlaces = 4

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Round(AmountPlaces).Equal(amount) {
		return fmt.Errorf("amount %s: %w", amount, common.ErrorInvalidInput)
	}
	return nil
}

func checkTransfer(sender, receiver string, amount decimal.Decimal) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if sender == receiver {
		return fmt.Errorf("transfer to the same wallet: %w", common.ErrorInvalidInput)
	}
	if sender == models.AdminSender || receiver == models.AdminSender {
		return fmt.Errorf("reserved wallet id: %w", common.ErrorInvalidInput)
	}
	return nil
}

// walletIDs lists the real wallets t touches.
func walletIDs(t *models.Transaction) []string {
	if t.IsAdminCredit() {
		return []string{t.ReceiverWalletID}
	}
	return sortedUnique([]string{t.SenderWalletID, t.ReceiverWalletID})
}

func kindOf(t *models.Transaction) string {
	if t.IsAdminCredit() {
		return KindAdminCredit
	}
	return KindTransfer
}
