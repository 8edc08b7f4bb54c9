package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/user/domain"
)

const userColumns = `u.id, u.user_name, u.email, u.password_hash, u.first_name, u.last_name,
	u.doc_number, u.phone_number, u.manager_id, u.email_confirmed, u.lockout_enabled,
	u.access_failed_count, u.created_at, u.updated_at,
	coalesce(string_agg(r.role, ',' order by r.role), '')`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	var (
		u       domain.User
		manager sql.NullString
		roles   string
	)
	dest := []any{&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.DocNumber, &u.PhoneNumber, &manager, &u.EmailConfirmed, &u.LockoutEnabled,
		&u.AccessFailedCount, &u.CreatedAt, &u.UpdatedAt, &roles}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if manager.Valid {
		m := manager.String
		u.ManagerID = &m
	}
	u.Roles = splitRoles(roles)
	return &u, nil
}

func splitRoles(s string) []rbac.Role {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]rbac.Role, 0, len(parts))
	for _, p := range parts {
		out = append(out, rbac.Role(p))
	}
	return out
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg string) (*domain.User, error) {
	q := `select ` + userColumns + `
	from users u left join user_roles r on r.user_id = u.id
	where ` + where + `
	group by u.id`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

// GetByUserName returns the user with the given (case-insensitive) user name, or nil if not found.
func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return r.getOne(ctx, "u.user_name = $1", domain.NormalizeUserName(userName))
}

// Create persists the user and its role grants. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `insert into users (id, user_name, email, password_hash, first_name, last_name,
		doc_number, phone_number, manager_id, email_confirmed, lockout_enabled, access_failed_count, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		u.ID, u.UserName, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.DocNumber, u.PhoneNumber, nullable(u.ManagerID), u.EmailConfirmed, u.LockoutEnabled,
		u.AccessFailedCount, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if err := insertRoles(ctx, tx, u.ID, u.Roles); err != nil {
		return err
	}
	return tx.Commit()
}

// Update writes the mutable profile fields, including user name and e-mail. Returns false when no row matched.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) (bool, error) {
	res, err := r.db.ExecContext(ctx, `update users set user_name = $2, email = $3, first_name = $4, last_name = $5,
		doc_number = $6, phone_number = $7, manager_id = $8, updated_at = $9 where id = $1`,
		u.ID, u.UserName, u.Email, u.FirstName, u.LastName, u.DocNumber, u.PhoneNumber, nullable(u.ManagerID), u.UpdatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes the user; role grants cascade. Returns false when no row matched.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetRoles replaces the user's grant set.
func (r *PostgresRepository) SetRoles(ctx context.Context, userID string, roles []rbac.Role) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from user_roles where user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	if err := insertRoles(ctx, tx, userID, roles); err != nil {
		return err
	}
	return tx.Commit()
}

// GetRoles returns the user's grants; empty when the user has none or does not exist.
func (r *PostgresRepository) GetRoles(ctx context.Context, userID string) ([]rbac.Role, error) {
	rows, err := r.db.QueryContext(ctx, `select role from user_roles where user_id = $1 order by role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []rbac.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, rbac.Role(role))
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	_, err := r.db.ExecContext(ctx, `update users set password_hash = $2, updated_at = $3 where id = $1`,
		userID, hash, time.Now().UTC())
	return err
}

// IncrementAccessFailed bumps access_failed_count and returns the new value.
func (r *PostgresRepository) IncrementAccessFailed(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `update users set access_failed_count = access_failed_count + 1
		where id = $1 returning access_failed_count`, userID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (r *PostgresRepository) ResetAccessFailed(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `update users set access_failed_count = 0 where id = $1`, userID)
	return err
}

// List returns every user with the manager's first name, ordered by last then first name.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.UserWithManager, error) {
	rows, err := r.db.QueryContext(ctx, `select `+userColumns+`, coalesce(m.first_name, '')
	from users u
	left join user_roles r on r.user_id = u.id
	left join users m on m.id = u.manager_id
	group by u.id, m.first_name
	order by u.last_name, u.first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.UserWithManager
	for rows.Next() {
		var managerName string
		u, err := scanUser(rows, &managerName)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.UserWithManager{User: *u, ManagerName: managerName})
	}
	return out, rows.Err()
}

func insertRoles(ctx context.Context, tx *sql.Tx, userID string, roles []rbac.Role) error {
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `insert into user_roles (user_id, role) values ($1, $2)`, userID, string(role)); err != nil {
			return fmt.Errorf("insert role %s: %w", role, err)
		}
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
