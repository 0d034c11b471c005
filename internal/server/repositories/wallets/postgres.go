package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/dbx"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, w *models.Wallet) error {
	query :=
		`INSERT INTO wallets (id, owner_username, balance)
		 VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, w.ID, w.OwnerUserName, w.Balance); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Wallet, error) {
	return r.get(ctx, `SELECT id, owner_username, balance FROM wallets
		 WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Wallet, error) {
	return r.get(ctx, `SELECT id, owner_username, balance FROM wallets
		 WHERE id = $1
		 FOR UPDATE`, id)
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, owner string) (*models.Wallet, error) {
	return r.get(ctx, `SELECT id, owner_username, balance FROM wallets
		 WHERE owner_username = $1
		 ORDER BY created_at, id
		 LIMIT 1`, owner)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg string) (*models.Wallet, error) {
	w := &models.Wallet{}

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&w.ID, &w.OwnerUserName, &w.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	w.History, err = r.history(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *PostgresRepository) history(ctx context.Context, walletID string) ([]string, error) {
	query :=
		`SELECT transaction_id FROM wallet_transactions
		 WHERE wallet_id = $1
		 ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) Save(ctx context.Context, w *models.Wallet) error {
	query :=
		`UPDATE wallets SET balance = $2
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, w.ID, w.Balance)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	for _, txID := range w.History {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO wallet_transactions (wallet_id, transaction_id)
			 VALUES ($1, $2)
			 ON CONFLICT (wallet_id, transaction_id) DO NOTHING`, w.ID, txID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
