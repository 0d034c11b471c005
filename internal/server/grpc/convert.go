package grpc

import (
	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/server/ledger"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

func toAccount(a *models.Account) api.Account {
	return api.Account{
		UserName:           a.UserName,
		FullName:           a.FullName,
		Email:              a.Email,
		Phone:              a.Phone,
		Role:               string(a.Role),
		TOTPEnabled:        a.TOTPEnabled(),
		MustChangePassword: a.MustChangeOnNextLogin,
		CreatedAt:          a.CreatedAt,
		LastLoginAt:        a.LastLoginAt,
	}
}

func toWallet(w *models.Wallet) *api.Wallet {
	return &api.Wallet{
		ID:      w.ID,
		Owner:   w.OwnerUserName,
		Balance: w.Balance,
		History: append([]string{}, w.History...),
	}
}

func toTransaction(t *models.Transaction) api.Transaction {
	return api.Transaction{
		ID:          t.ID,
		Sender:      t.SenderWalletID,
		Receiver:    t.ReceiverWalletID,
		Amount:      t.Amount,
		Timestamp:   t.Timestamp,
		Description: t.Description,
		Status:      string(t.Status),
	}
}

func toChallenge(h *ledger.ChallengeHandle) *api.Challenge {
	return &api.Challenge{
		UserName:  h.UserName,
		Purpose:   h.Purpose,
		ExpiresAt: h.ExpiresAt,
	}
}

func toProfile(req *api.UpdateProfileRequest) models.Profile {
	return models.Profile{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
}
