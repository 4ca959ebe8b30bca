package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockAccountStore is a mock implementation of the AccountStore interface
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) CreateAccount(ctx context.Context, email, passwordHash string) (Account, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Get(0).(Account), args.Error(1)
}

func (m *MockAccountStore) FindAccountByEmail(ctx context.Context, email string) (Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(Account), args.Error(1)
}

func newTestService(store AccountStore) *Service {
	s := NewService(store, NewTokenIssuer("secret", time.Hour), zap.NewNop())
	s.hashCost = bcrypt.MinCost
	return s
}

func TestSignUp(t *testing.T) {
	store := new(MockAccountStore)
	service := newTestService(store)
	ctx := context.Background()

	store.On("CreateAccount", ctx, "ada@example.com", mock.AnythingOfType("string")).
		Return(Account{ID: "user-1", Email: "ada@example.com"}, nil)

	session, err := service.SignUp(ctx, "  Ada@Example.com ", "correct horse")

	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.NotEmpty(t, session.Token)
	store.AssertExpectations(t)
}

func TestSignUpValidation(t *testing.T) {
	service := newTestService(new(MockAccountStore))

	_, err := service.SignUp(context.Background(), "not-an-email", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.SignUp(context.Background(), "ada@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignIn(t *testing.T) {
	store := new(MockAccountStore)
	service := newTestService(store)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store.On("FindAccountByEmail", ctx, "ada@example.com").
		Return(Account{ID: "user-1", Email: "ada@example.com", PasswordHash: string(hash)}, nil)

	session, err := service.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)

	_, err = service.SignIn(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnknownAccount(t *testing.T) {
	store := new(MockAccountStore)
	service := newTestService(store)
	ctx := context.Background()

	store.On("FindAccountByEmail", ctx, "ghost@example.com").Return(Account{}, ErrAccountNotFound)

	_, err := service.SignIn(ctx, "ghost@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
