package service

import (
	"context"

	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/repository"
)

// UsernameAllocator draws random handles until one is not taken.
type UsernameAllocator struct {
	accounts repository.AccountRepository
	length   int
	generate func(length int) (string, error)
}

// NewUsernameAllocator builds an allocator producing handles of length characters.
func NewUsernameAllocator(accounts repository.AccountRepository, length int) *UsernameAllocator {
	return &UsernameAllocator{accounts: accounts, length: length, generate: auth.GenerateHandle}
}

// Allocate probes the account store and returns the first free handle.
// There is no iteration cap; the handle length keeps collisions negligible.
func (a *UsernameAllocator) Allocate(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate, err := a.generate(a.length)
		if err != nil {
			return "", err
		}
		taken, err := a.accounts.UsernameExists(ctx, candidate)
		if err != nil {
			return "", storeFailure("probe username", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
