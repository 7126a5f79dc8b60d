package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/signup-service/internal/domain"
)

// AuthCodeRepository manages issued authcode persistence.
type AuthCodeRepository interface {
	Create(ctx context.Context, code *domain.AuthCode) error
	GetByID(ctx context.Context, id string) (*domain.AuthCode, error)
}

type authCodeRepository struct {
	pool *pgxpool.Pool
}

// NewAuthCodeRepository constructs repository.
func NewAuthCodeRepository(pool *pgxpool.Pool) AuthCodeRepository {
	return &authCodeRepository{pool: pool}
}

func (r *authCodeRepository) Create(ctx context.Context, code *domain.AuthCode) error {
	const query = `
        INSERT INTO authcodes (authcode_id, code, email, expire_datetime, create_datetime, update_datetime)
        VALUES ($1,$2,$3,$4,$5,$5)
        RETURNING delete_flag, update_datetime`
	return r.pool.QueryRow(ctx, query,
		code.ID,
		code.Code,
		code.Email,
		code.ExpiresAt,
		code.CreatedAt,
	).Scan(&code.Deleted, &code.UpdatedAt)
}

func (r *authCodeRepository) GetByID(ctx context.Context, id string) (*domain.AuthCode, error) {
	const query = `
        SELECT authcode_id, code, email, expire_datetime, delete_flag, create_datetime, update_datetime
        FROM authcodes WHERE authcode_id=$1`
	var code domain.AuthCode
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&code.ID,
		&code.Code,
		&code.Email,
		&code.ExpiresAt,
		&code.Deleted,
		&code.CreatedAt,
		&code.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &code, nil
}
