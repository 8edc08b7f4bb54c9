package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"employee-directory/backend/internal/refreshtoken/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh token repository backed by the refresh_tokens table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUserID returns the token for userID, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, `select id, user_id, token_hash, expire_date, created_at
		from refresh_tokens where user_id = $1`, userID).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpireDate, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Replace deletes the user's previous token and inserts t in one transaction.
func (r *PostgresRepository) Replace(ctx context.Context, t *domain.RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from refresh_tokens where user_id = $1`, t.UserID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `insert into refresh_tokens (id, user_id, token_hash, expire_date, created_at)
		values ($1, $2, $3, $4, $5)`, t.ID, t.UserID, t.TokenHash, t.ExpireDate, t.CreatedAt); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return tx.Commit()
}

// Consume is a conditional delete; only one of several concurrent callers can see a row affected.
func (r *PostgresRepository) Consume(ctx context.Context, userID, tokenHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `delete from refresh_tokens where user_id = $1 and token_hash = $2`, userID, tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `delete from refresh_tokens where user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
