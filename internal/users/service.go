package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"slidesage-backend/internal/shared/auth"
	"slidesage-backend/internal/shared/telemetry"
)

const minPasswordLen = 8

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(claims auth.Claims) (string, error)
}

// Service manages accounts and sessions.
type Service struct {
	Repo   Repo
	Tokens TokenSigner

	bcryptCost int
}

// Session is a signed token plus the user it identifies.
type Session struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// NewService constructs a Service.
func NewService(repo Repo, tokens TokenSigner) *Service {
	return &Service{Repo: repo, Tokens: tokens, bcryptCost: bcrypt.DefaultCost}
}

// Register creates a password account and signs a session for it.
func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return Session{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     ProviderPassword,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return Session{}, err
	}
	telemetry.Info("users.registered", map[string]any{"userId": user.ID})
	return s.session(user)
}

// Login checks a password and signs a session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if user.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("compare password: %w", err)
	}
	return s.session(user)
}

// UpsertFromAuth persists an identity confirmed by an external provider.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	user.Email = normalizeEmail(user.Email)
	return s.Repo.Upsert(ctx, user)
}

// SignFor issues a session token for an existing user.
func (s *Service) SignFor(user User) (string, error) {
	sess, err := s.session(user)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) session(user User) (Session, error) {
	if s.Tokens == nil {
		return Session{}, errors.New("token signer not configured")
	}
	token, err := s.Tokens.Sign(auth.Claims{Sub: user.ID, Email: user.Email, Name: user.Name, Picture: user.PictureURL})
	if err != nil {
		return Session{}, err
	}
	var sess Session
	sess.Token = token
	sess.User.ID = user.ID
	sess.User.Email = user.Email
	return sess, nil
}

func (s *Service) cost() int {
	if s.bcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.bcryptCost
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}
