package domain

import (
	"errors"
	"strings"
	"time"

	"employee-directory/backend/internal/platform/rbac"
)

// User is the core user entity (the authenticating principal).
type User struct {
	ID                string
	UserName          string // lower-cased e-mail; unique
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	DocNumber         string
	PhoneNumber       string // comma-separated list as entered
	ManagerID         *string
	Roles             []rbac.Role
	EmailConfirmed    bool
	LockoutEnabled    bool
	AccessFailedCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserWithManager is a directory row: the user plus the manager's first name.
type UserWithManager struct {
	User
	ManagerName string
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.UserName == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.FirstName == "" || u.LastName == "" {
		return errors.New("first and last name are required")
	}
	for _, r := range u.Roles {
		if !r.Valid() {
			return errors.New("unknown role " + string(r))
		}
	}
	return nil
}

// EffectiveRole returns the role used for authorization decisions.
func (u *User) EffectiveRole() (rbac.Role, bool) {
	return rbac.EffectiveRole(u.Roles)
}

// PhoneNumbers splits the stored phone field on commas, dropping blanks.
func (u *User) PhoneNumbers() []string {
	var out []string
	for _, p := range strings.Split(u.PhoneNumber, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeUserName lower-cases and trims a user name or e-mail.
func NormalizeUserName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
