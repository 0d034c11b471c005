package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/dbx"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `username, password_hash, full_name, email, phone, role,
		password_is_temporary, must_change_on_next_login, totp_secret, created_at, last_login_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var role string
	var lastLogin sql.NullTime

	err := row.Scan(&a.UserName, &a.PasswordHash, &a.FullName, &a.Email, &a.Phone, &role,
		&a.PasswordIsTemporary, &a.MustChangeOnNextLogin, &a.TOTPSecret, &a.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}

	a.Role = models.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return a, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userName string) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts
		 WHERE username = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, userName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userName string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userName).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func lastLoginArg(a *models.Account) any {
	if a.LastLoginAt == nil {
		return nil
	}
	return *a.LastLoginAt
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	query :=
		`INSERT INTO accounts (username, password_hash, full_name, email, phone, role,
		     password_is_temporary, must_change_on_next_login, totp_secret, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		a.UserName, a.PasswordHash, a.FullName, a.Email, a.Phone, string(a.Role),
		a.PasswordIsTemporary, a.MustChangeOnNextLogin, a.TOTPSecret, a.CreatedAt, lastLoginArg(a))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, a *models.Account) error {
	query :=
		`INSERT INTO accounts (username, password_hash, full_name, email, phone, role,
		     password_is_temporary, must_change_on_next_login, totp_secret, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (username) DO UPDATE SET
		     password_hash = EXCLUDED.password_hash,
		     full_name = EXCLUDED.full_name,
		     email = EXCLUDED.email,
		     phone = EXCLUDED.phone,
		     role = EXCLUDED.role,
		     password_is_temporary = EXCLUDED.password_is_temporary,
		     must_change_on_next_login = EXCLUDED.must_change_on_next_login,
		     totp_secret = EXCLUDED.totp_secret,
		     last_login_at = EXCLUDED.last_login_at`

	_, err := r.db.ExecContext(ctx, query,
		a.UserName, a.PasswordHash, a.FullName, a.Email, a.Phone, string(a.Role),
		a.PasswordIsTemporary, a.MustChangeOnNextLogin, a.TOTPSecret, a.CreatedAt, lastLoginArg(a))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// execOne runs an UPDATE that must hit exactly the named account.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userName string, at time.Time) error {
	query := `UPDATE accounts SET last_login_at = $2 WHERE username = $1`
	return r.execOne(ctx, query, userName, at)
}

func (r *PostgresRepository) SetPassword(ctx context.Context, userName, hash string, temporary bool) error {
	query :=
		`UPDATE accounts
		 SET password_hash = $2, password_is_temporary = $3, must_change_on_next_login = $3
		 WHERE username = $1`
	return r.execOne(ctx, query, userName, hash, temporary)
}

func (r *PostgresRepository) SetTOTPSecret(ctx context.Context, userName, secret string) error {
	query := `UPDATE accounts SET totp_secret = $2 WHERE username = $1`
	return r.execOne(ctx, query, userName, secret)
}

func (r *PostgresRepository) SetProfile(ctx context.Context, userName string, p models.Profile) (*models.Account, error) {
	query :=
		`UPDATE accounts SET full_name = $2, email = $3, phone = $4
		 WHERE username = $1
		 RETURNING ` + selectColumns

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, userName, p.FullName, p.Email, p.Phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts
		 ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
