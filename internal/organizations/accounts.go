package organizations

import (
	"context"
	"errors"

	"perfsuite/dashboard/dashboard-backend/internal/auth"
)

// AccountStore exposes users to the auth service
type AccountStore struct {
	repo Repository
}

func NewAccountStore(repo Repository) *AccountStore {
	return &AccountStore{repo: repo}
}

func (s *AccountStore) CreateAccount(ctx context.Context, email, passwordHash string) (auth.Account, error) {
	user := &User{Email: email, PasswordHash: passwordHash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return auth.Account{}, auth.ErrEmailTaken
		}
		return auth.Account{}, err
	}
	return toAccount(user), nil
}

func (s *AccountStore) FindAccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	if err != nil {
		return auth.Account{}, err
	}
	return toAccount(user), nil
}

func toAccount(user *User) auth.Account {
	return auth.Account{
		ID:           user.ID.String(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
}
