package transactions

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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var status string

	if err := row.Scan(&t.ID, &t.SenderWalletID, &t.ReceiverWalletID, &t.Amount, &t.Timestamp, &t.Description, &status); err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transaction) error {
	query :=
		`INSERT INTO transactions (id, sender_wallet_id, receiver_wallet_id, amount, created_at, description, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.SenderWalletID, t.ReceiverWalletID, t.Amount, t.Timestamp, t.Description, string(t.Status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Transaction, error) {
	query :=
		`SELECT id, sender_wallet_id, receiver_wallet_id, amount, created_at, description, status
		 FROM transactions
		 WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ForWallet(ctx context.Context, walletID string) ([]*models.Transaction, error) {
	query :=
		`SELECT id, sender_wallet_id, receiver_wallet_id, amount, created_at, description, status
		 FROM transactions
		 WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Save(ctx context.Context, t *models.Transaction) error {
	query :=
		`UPDATE transactions SET status = $2, description = $3
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, t.ID, string(t.Status), t.Description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
