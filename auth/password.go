package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	HashPassword(ctx context.Context, password string) (string, error)
	VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error)
}

type BcryptHasher struct {
	Cost int

	once  sync.Once
	dummy []byte
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) HashPassword(_ context.Context, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) VerifyPassword(_ context.Context, password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	}
	return false, err
}

// Burn performs a comparison against a fixed hash at the configured cost so
// that unknown identifiers take as long as wrong passwords.
func (h *BcryptHasher) Burn(password string) {
	h.once.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.Cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
