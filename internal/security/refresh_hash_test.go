package security

import (
	"encoding/base64"
	"testing"
)

func TestNewRefreshToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok, err := NewRefreshToken()
		if err != nil {
			t.Fatalf("NewRefreshToken: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("token is not standard base64: %v", err)
		}
		if len(raw) != RefreshTokenSize {
			t.Fatalf("decoded length = %d, want %d", len(raw), RefreshTokenSize)
		}
		if seen[tok] {
			t.Fatal("NewRefreshToken returned a duplicate value")
		}
		seen[tok] = true
	}
}

func TestHashRefreshToken(t *testing.T) {
	h1 := HashRefreshToken("token-1")
	if h1 != HashRefreshToken("token-1") {
		t.Error("HashRefreshToken not consistent")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(h1))
	}
	if h1 == HashRefreshToken("token-2") {
		t.Error("different tokens produced the same hash")
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	stored := HashRefreshToken("correct-token")
	cases := []struct {
		name     string
		provided string
		stored   string
		want     bool
	}{
		{"match", "correct-token", stored, true},
		{"wrong token", "wrong-token", stored, false},
		{"longer stored hash", "correct-token", "0" + stored, false},
		{"empty token", "", stored, false},
		{"empty both", "", "", false},
		{"empty stored", "correct-token", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RefreshTokenHashEqual(tc.provided, tc.stored); got != tc.want {
				t.Errorf("RefreshTokenHashEqual = %v, want %v", got, tc.want)
			}
		})
	}
}
