package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signup-service/internal/domain"
)

const (
	uniqueViolation         = "23505"
	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_username_key"
)

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `user_id, username, account_name, email, birthday, self_introduction, profile_image,
        header_image, verified_flag, auth_failure_count, account_lock_flag, delete_flag, create_datetime, update_datetime`

// Create inserts the account and fills the generated id and audit timestamps.
// Unique violations on email or username surface as domain sentinels.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO users (username, account_name, email, birthday, verified_flag, auth_failure_count, account_lock_flag)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING user_id, delete_flag, create_datetime, update_datetime`

	err := r.pool.QueryRow(ctx, query,
		account.Username,
		account.DisplayName,
		account.Email,
		account.Birthdate,
		account.Verified,
		account.AuthFailureCount,
		account.Locked,
	).Scan(&account.ID, &account.Deleted, &account.CreatedAt, &account.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE user_id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.DisplayName,
		&account.Email,
		&account.Birthdate,
		&account.SelfIntroduction,
		&account.ProfileImage,
		&account.HeaderImage,
		&account.Verified,
		&account.AuthFailureCount,
		&account.Locked,
		&account.Deleted,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case usersEmailConstraint:
		return domain.ErrDuplicateEmail
	case usersUsernameConstraint:
		return domain.ErrUsernameTaken
	}
	return err
}
