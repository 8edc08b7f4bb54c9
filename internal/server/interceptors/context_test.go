package interceptors

import (
	"context"
	"testing"
)

func TestWithIdentity_SetsAllValues(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "Leader", "jti-1")

	userID, ok := GetUserID(ctx)
	if !ok {
		t.Fatal("GetUserID should return true")
	}
	if userID != "user-1" {
		t.Errorf("user_id = %q, want %q", userID, "user-1")
	}

	role, ok := GetRole(ctx)
	if !ok {
		t.Fatal("GetRole should return true")
	}
	if role != "Leader" {
		t.Errorf("role = %q, want %q", role, "Leader")
	}

	tokenID, ok := GetTokenID(ctx)
	if !ok {
		t.Fatal("GetTokenID should return true")
	}
	if tokenID != "jti-1" {
		t.Errorf("token_id = %q, want %q", tokenID, "jti-1")
	}
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetUserID(ctx); ok {
		t.Error("GetUserID should return false on empty context")
	}
	if _, ok := GetRole(ctx); ok {
		t.Error("GetRole should return false on empty context")
	}
	if _, ok := GetTokenID(ctx); ok {
		t.Error("GetTokenID should return false on empty context")
	}
}

func TestWithIdentity_OverwritesPrevious(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "Employee", "jti-1")
	ctx = WithIdentity(ctx, "user-2", "Director", "jti-2")

	if id, _ := GetUserID(ctx); id != "user-2" {
		t.Errorf("user_id = %q, want user-2", id)
	}
	if role, _ := GetRole(ctx); role != "Director" {
		t.Errorf("role = %q, want Director", role)
	}
}
