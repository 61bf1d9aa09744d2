package account

import (
	"context"
	"errors"
	"testing"
	"time"

	userrepo "storefront/internal/repository/user"
)

func newService() (*Service, userrepo.Repository) {
	repo := userrepo.NewMemory()
	return New(repo, "test-secret", time.Hour), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Morty@Example.com", "aw-geez-rick")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "morty@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if !user.IsActive {
		t.Fatalf("expected new user to be active")
	}

	got, token, err := svc.Login(ctx, "morty@example.com", "aw-geez-rick")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}

	resolved, err := svc.LookupByToken(ctx, token)
	if err != nil {
		t.Fatalf("lookup by token: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("token resolved to wrong user: %d", resolved.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "long-enough-pw"); err == nil {
		t.Fatalf("expected email validation error")
	}
	if _, err := svc.Register(ctx, "morty@example.com", "short"); err == nil {
		t.Fatalf("expected password validation error")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "morty@example.com", "aw-geez-rick"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "morty@example.com", "another-password")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "morty@example.com", "aw-geez-rick"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Login(ctx, "morty@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, _, err = svc.Login(ctx, "unknown@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLookupByTokenRejectsGarbage(t *testing.T) {
	svc, _ := newService()
	if _, err := svc.LookupByToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	repo := userrepo.NewMemory()
	svc := New(repo, "test-secret", -time.Minute)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "morty@example.com", "aw-geez-rick"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(ctx, "morty@example.com", "aw-geez-rick")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
