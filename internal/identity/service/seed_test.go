package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/security"
)

func TestSeedDirector(t *testing.T) {
	users := newMemUserRepo()
	hasher := security.NewHasher(bcrypt.MinCost)
	seed := DirectorSeed{Email: " Director@Company.com ", Password: "Director@123"}

	id, created, err := SeedDirector(context.Background(), users, hasher, seed, nil)
	if err != nil || !created || id == "" {
		t.Fatalf("SeedDirector = %q, %v, %v", id, created, err)
	}
	u, _ := users.GetByUserName(context.Background(), "director@company.com")
	if u == nil {
		t.Fatal("director not stored")
	}
	if role, _ := u.EffectiveRole(); role != rbac.RoleDirector {
		t.Errorf("role = %s", role)
	}
	if !hasher.Verify(u.PasswordHash, "Director@123") {
		t.Error("password hash does not verify")
	}

	again, created, err := SeedDirector(context.Background(), users, hasher, seed, nil)
	if err != nil || created || again != id {
		t.Errorf("second run = %q, %v, %v; want existing id, not created", again, created, err)
	}
}

func TestSeedDirector_Rejects(t *testing.T) {
	users := newMemUserRepo()
	hasher := security.NewHasher(bcrypt.MinCost)
	if _, _, err := SeedDirector(context.Background(), users, hasher, DirectorSeed{Password: "Director@123"}, nil); err == nil {
		t.Error("missing e-mail should fail")
	}
	if _, _, err := SeedDirector(context.Background(), users, hasher, DirectorSeed{Email: "d@x.io", Password: "weak"}, nil); err == nil {
		t.Error("weak password should fail")
	}
}
