package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

const minPasswordLength = 8

// Account is the identity record behind a user
type Account struct {
	ID           string
	Email        string
	PasswordHash string
}

// AccountStore persists accounts
type AccountStore interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (Account, error)
	FindAccountByEmail(ctx context.Context, email string) (Account, error)
}

// Session is the result of a successful sign-in
type Session struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service handles sign-up and sign-in
type Service struct {
	store    AccountStore
	tokens   *TokenIssuer
	logger   *zap.Logger
	hashCost int
}

// NewService creates a new auth service
func NewService(store AccountStore, tokens *TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// SignUp creates an account and signs it in
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.store.CreateAccount(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account created", zap.String("user_id", account.ID))
	return s.issue(account.ID)
}

// SignIn verifies credentials and issues a token
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.store.FindAccountByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(account.ID)
}

func (s *Service) issue(userID string) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
