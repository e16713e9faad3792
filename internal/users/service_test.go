package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"slidesage-backend/internal/shared/auth"
)

func newTestService(t *testing.T) (*Service, *auth.Issuer) {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	svc := NewService(NewMemoryRepo(), issuer)
	svc.bcryptCost = bcrypt.MinCost
	return svc, issuer
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	svc, issuer := newTestService(t)

	sess, err := svc.Register(context.Background(), "  Alice@Example.COM ", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", sess.User.Email)
	}
	claims, err := issuer.Verify(sess.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Sub != sess.User.ID || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored, err := svc.GetByID(context.Background(), sess.User.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "password123" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
	if stored.Provider != ProviderPassword {
		t.Fatalf("expected provider %q, got %q", ProviderPassword, stored.Provider)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "missing at", email: "alice.example.com", password: "password123"},
		{name: "empty email", email: "", password: "password123"},
		{name: "short password", email: "alice@example.com", password: "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.email, tc.password)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "bob@example.com", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "BOB@example.com", "password456")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "carol@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := svc.Login(ctx, "Carol@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.User.ID != registered.User.ID || sess.Token == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := svc.Login(ctx, "carol@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoginRejectsOAuthOnlyAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.UpsertFromAuth(ctx, User{ID: "google:123", Email: "dana@example.com", Provider: ProviderGoogle})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.Login(ctx, "dana@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpsertFromAuthPreservesCreatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.UpsertFromAuth(ctx, User{ID: "google:1", Email: "E@x.io", Name: "Old", Provider: ProviderGoogle}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	first, _ := svc.GetByID(ctx, "google:1")

	if err := svc.UpsertFromAuth(ctx, User{ID: "google:1", Email: "e@x.io", Name: "New", Provider: ProviderGoogle}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	second, _ := svc.GetByID(ctx, "google:1")

	if second.Name != "New" || second.Email != "e@x.io" {
		t.Fatalf("expected refreshed profile, got %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	if err := svc.UpsertFromAuth(ctx, User{ID: "", Email: "x@y.z"}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestGetByIDUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), " "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank id, got %v", err)
	}
}
