package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fitlearn/quizlab-backend/internal/config"
)

func newTestAuthService(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, rdb), mr
}

func TestPasswordRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := svc.CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMemberTokenSingleDevice(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateMemberToken(ctx, 7)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != TokenTypeMember || claims.UserID != 7 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if err := svc.ValidateMemberLogin(ctx, 7, claims.ID); err != nil {
		t.Fatalf("validate login: %v", err)
	}

	// second login on another device is rejected while the first is active
	if _, err := svc.GenerateMemberToken(ctx, 7); !errors.Is(err, ErrLoginAlreadyActive) {
		t.Fatalf("expected ErrLoginAlreadyActive, got %v", err)
	}

	// resetting the login frees the slot
	if err := svc.ResetMemberLogin(ctx, 7); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.GenerateMemberToken(ctx, 7); err != nil {
		t.Fatalf("relogin after reset: %v", err)
	}

	// the old token's jti no longer matches
	if err := svc.ValidateMemberLogin(ctx, 7, claims.ID); err == nil {
		t.Fatalf("expected stale jti rejected")
	}
}

func TestMemberLoginExpiresWithToken(t *testing.T) {
	svc, mr := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.GenerateMemberToken(ctx, 9); err != nil {
		t.Fatalf("login: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	// the login key expired, so a new login succeeds
	if _, err := svc.GenerateMemberToken(ctx, 9); err != nil {
		t.Fatalf("login after expiry: %v", err)
	}
}

func TestAuthorTokenValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, err := svc.GenerateAuthorToken(3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TokenType != TokenTypeAuthor || claims.UserID != 3 {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateToken(token + "tampered"); err == nil {
		t.Fatalf("expected tampered token rejected")
	}
}
