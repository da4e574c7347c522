package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, 7, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if !tok.Exp.After(time.Now()) {
		t.Fatalf("expiry %v not in the future", tok.Exp)
	}
	id, priv, err := ParseAccessToken("secret", tok.Token)
	if err != nil || id != 42 || priv != 7 {
		t.Fatalf("ParseAccessToken = %d, %d, %v", id, priv, err)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("secret", 1, 10, 5)
	expired, _ := NewAccessToken("secret", 1, 10, -1)
	tests := []struct {
		name, secret, raw string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "secret", expired.Token},
		{"garbage", "secret", "not.a.jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseAccessToken(tc.secret, tc.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken(7)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Fatalf("raw tokens %q / %q", a.Raw, b.Raw)
	}
	if h := HashRefreshRaw(a.Raw); len(h) != 64 || h == a.Raw || h != HashRefreshRaw(a.Raw) {
		t.Fatalf("hash %q", h)
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "hunter2") || VerifyPassword(h, "hunter3") {
		t.Fatal("verify mismatch")
	}
	if _, err := HashPassword("", bcrypt.MinCost); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("empty password: %v", err)
	}
	if _, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("long password: %v", err)
	}
}
