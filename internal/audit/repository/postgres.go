package repository

import (
	"context"
	"database/sql"
	"errors"

	"employee-directory/backend/internal/audit/domain"
)

const auditColumns = `id, coalesce(actor_id, ''), coalesce(target_id, ''), action, ip,
	coalesce(metadata, ''), coalesce(trace_id, ''), created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository backed by the audit_logs table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	a, err := scanAuditLog(r.db.QueryRowContext(ctx, `select `+auditColumns+` from audit_logs where id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByUser returns events where userID was the actor or the target, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `select `+auditColumns+` from audit_logs
		where actor_id = $1 or target_id = $1
		order by created_at desc limit $2 offset $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `insert into audit_logs
		(id, actor_id, target_id, action, ip, metadata, trace_id, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, nullString(a.ActorID), nullString(a.TargetID), a.Action, a.IP,
		nullString(a.Metadata), nullString(a.TraceID), a.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(s rowScanner) (*domain.AuditLog, error) {
	var a domain.AuditLog
	if err := s.Scan(&a.ID, &a.ActorID, &a.TargetID, &a.Action, &a.IP, &a.Metadata, &a.TraceID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
