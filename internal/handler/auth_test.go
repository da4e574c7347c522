package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/railway-ticketing/internal/config"
	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/repository/memstore"
	"github.com/iliyamo/railway-ticketing/internal/service"
	"github.com/iliyamo/railway-ticketing/internal/utils"
)

// stuckTokens cannot revoke anything and counts newly stored tokens.
type stuckTokens struct {
	repository.TokenStore
	stored int
}

func (s *stuckTokens) RevokeByHash(context.Context, string) error {
	return errors.New("tokens: connection reset")
}

func (s *stuckTokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	s.stored++
	return s.TokenStore.StoreRefresh(ctx, userID, hash, exp)
}

func TestRefreshFailsWhenRevokeFails(t *testing.T) {
	ctx := context.Background()
	b := memstore.New()
	users := service.NewUserService(b.Users, bcrypt.MinCost, 10)
	if err := users.EnsureAdmin(ctx, "root"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	tokens := &stuckTokens{TokenStore: b.Tokens}
	h := NewAuthHandler(config.Config{JWTSecret: "secret", AccessTTLMin: 15, RefreshTTLDays: 7}, users, tokens)

	old, err := utils.NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	hash := utils.HashRefreshRaw(old.Raw)
	if err := b.Tokens.StoreRefresh(ctx, service.AdminID, hash, old.Exp); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"`+old.Raw+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Refresh(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (body %s)", rec.Code, rec.Body.String())
	}
	if tokens.stored != 0 {
		t.Fatalf("issued %d new refresh token(s) without revoking the old one", tokens.stored)
	}
	if _, err := b.Tokens.ValidateRefresh(ctx, hash); err != nil {
		t.Fatalf("old token should still be valid: %v", err)
	}
}
