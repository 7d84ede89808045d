package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/velichkin/parley-server/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "parley",
		Audience: "parley-clients",
		TTL:      time.Hour,
	}
	return NewService(st, cfg)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ab", "password"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("short username: got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "12345"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("short password: got %v", err)
	}
}

func TestRegisterTrimsAndRejectsDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "  alice  ", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("username not trimmed: %q", claims.Username)
	}

	if _, err := svc.Register(ctx, "alice", "otherpassword"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate register: got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "password"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestVerifyYieldsIdentity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	identity, err := svc.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.ID == 0 || identity.Name != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, err := svc.Verify(ctx, "not-a-token"); err == nil {
		t.Fatal("expected garbage credential to fail")
	}
}

func TestValidateTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := &JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "parley",
		Audience: "parley-clients",
		TTL:      time.Hour,
	}
	token, err := GenerateToken(cfg, 1, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	wrongSecret := &JWTConfig{Secret: []byte("other"), Issuer: cfg.Issuer, Audience: cfg.Audience, TTL: cfg.TTL}
	if _, err := ValidateToken(wrongSecret, token); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}

	wrongIssuer := &JWTConfig{Secret: cfg.Secret, Issuer: "someone-else", Audience: cfg.Audience, TTL: cfg.TTL}
	if _, err := ValidateToken(wrongIssuer, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password" {
		t.Fatal("hash must not equal plaintext")
	}
	if err := ComparePassword(hash, "password"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch to fail")
	}
}
