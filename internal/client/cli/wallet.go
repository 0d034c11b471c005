package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/api"
)

// PurposeTransfer is the challenge purpose of a one-shot transfer.
const PurposeTransfer = "transfer"

// Wallet shows a wallet's balance. Empty input means the user's own wallet.
func (a *App) Wallet(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter wallet ID (empty for your own)", a.out)
	if err != nil {
		return err
	}

	w, err := a.api.Wallet(ctx, id)
	if err != nil {
		return err
	}
	printlnFn("Wallet: ", w.ID)
	printlnFn("Owner:  ", w.Owner)
	printlnFn("Balance:", w.Balance.String())
	return nil
}

// History lists the transactions of a wallet, oldest first.
func (a *App) History(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter wallet ID (empty for your own)", a.out)
	if err != nil {
		return err
	}

	txs, err := a.api.History(ctx, id)
	if err != nil {
		return err
	}
	for i := range txs {
		printTransaction(&txs[i])
	}
	printlnFn(fmt.Sprintf("%d transaction(s)", len(txs)))
	return nil
}

// Transfer moves points in two phases: the server issues a code bound to
// the exact transfer, and the transfer is confirmed with that code.
func (a *App) Transfer(ctx context.Context) error {
	req, err := a.readTransfer(ctx)
	if err != nil {
		return err
	}

	started, err := a.api.InitiateTransfer(ctx, req)
	if err != nil {
		return err
	}
	if req.Code, err = a.readCode(&started.Challenge); err != nil {
		return err
	}

	t, err := a.api.ConfirmTransfer(ctx, req)
	if err != nil {
		return err
	}
	printTransaction(t)
	return nil
}

// Send is the one-shot transfer: a plain transfer code, then the transfer.
func (a *App) Send(ctx context.Context) error {
	req, err := a.readTransfer(ctx)
	if err != nil {
		return err
	}

	if req.Code, err = a.requestCode(ctx, a.userName, PurposeTransfer); err != nil {
		return err
	}

	t, err := a.api.TransferPoints(ctx, req)
	if err != nil {
		return err
	}
	printTransaction(t)
	return nil
}

func (a *App) readTransfer(ctx context.Context) (api.TransferRequest, error) {
	var req api.TransferRequest

	own, err := a.api.Wallet(ctx, "")
	if err != nil {
		return req, err
	}
	sender, err := getSimpleText(a.reader, "Enter sender wallet ID (empty for "+own.ID+")", a.out)
	if err != nil {
		return req, err
	}
	if sender == "" {
		sender = own.ID
	}
	req.Sender = sender

	receiver, err := getSimpleText(a.reader, "Enter receiver wallet ID", a.out)
	if err != nil {
		return req, err
	}
	if req.Receiver, err = required(receiver, "receiver"); err != nil {
		return req, err
	}

	if req.Amount, err = GetAmount(a.reader, "Enter amount", a.out); err != nil {
		return req, err
	}
	if req.Description, err = getSimpleText(a.reader, "Enter description (optional)", a.out); err != nil {
		return req, err
	}
	return req, nil
}

// Credit injects points into a wallet. Administrators only; the code goes
// to the administrator.
func (a *App) Credit(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter wallet ID", a.out)
	if err != nil {
		return err
	}
	if id, err = required(id, "wallet ID"); err != nil {
		return err
	}
	amount, err := GetAmount(a.reader, "Enter amount", a.out)
	if err != nil {
		return err
	}

	ch, err := a.api.RequestAdminCredit(ctx, id, amount)
	if err != nil {
		return err
	}
	code, err := a.readCode(ch)
	if err != nil {
		return err
	}

	t, err := a.api.AdminCredit(ctx, id, amount, code)
	if err != nil {
		return err
	}
	printTransaction(t)
	return nil
}

// Cancel moves a pending transaction to cancelled.
func (a *App) Cancel(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter transaction ID", a.out)
	if err != nil {
		return err
	}
	if id, err = required(id, "transaction ID"); err != nil {
		return err
	}

	t, err := a.api.CancelTransaction(ctx, id)
	if err != nil {
		return err
	}
	printTransaction(t)
	return nil
}

func printTransaction(t *api.Transaction) {
	line := fmt.Sprintf("%s  %s  %s -> %s  %s  [%s]",
		t.Timestamp.Local().Format("2006-01-02 15:04:05"), t.ID, t.Sender, t.Receiver, t.Amount.String(), t.Status)
	if t.Description != "" {
		line += "  " + t.Description
	}
	printlnFn(line)
}
