package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/security"
	userdomain "employee-directory/backend/internal/user/domain"
)

// DirectorSeed describes the initial Director account.
type DirectorSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	DocNumber string
}

// SeedDirector creates the initial Director account unless a user with that e-mail already
// exists. It returns the user id and whether a user was created.
func SeedDirector(ctx context.Context, users UserRepo, hasher PasswordHasher, seed DirectorSeed, log logrus.FieldLogger) (string, bool, error) {
	userName := userdomain.NormalizeUserName(seed.Email)
	if userName == "" {
		return "", false, errors.New("seed: director e-mail is required")
	}
	existing, err := users.GetByUserName(ctx, userName)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		if log != nil {
			log.WithField("user_id", existing.ID).Info("director already present")
		}
		return existing.ID, false, nil
	}
	if err := security.ValidatePasswordPolicy(seed.Password); err != nil {
		return "", false, err
	}
	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return "", false, err
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:             uuid.New().String(),
		UserName:       userName,
		Email:          userName,
		PasswordHash:   hash,
		FirstName:      orDefault(seed.FirstName, "Director"),
		LastName:       orDefault(seed.LastName, "Director"),
		DocNumber:      orDefault(seed.DocNumber, "0"),
		Roles:          []rbac.Role{rbac.RoleDirector},
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.Validate(); err != nil {
		return "", false, err
	}
	if err := users.Create(ctx, u); err != nil {
		return "", false, err
	}
	if log != nil {
		log.WithField("user_id", u.ID).Info("director created")
	}
	return u.ID, true, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
