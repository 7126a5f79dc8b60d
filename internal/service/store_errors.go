package service

import (
	"errors"
	"fmt"

	"github.com/spec-kit/signup-service/internal/domain"
)

// storeFailure annotates a store error with op. Errors that already carry a
// domain meaning pass through; anything else is reported as an unavailable store.
func storeFailure(op string, err error) error {
	for _, known := range []error{domain.ErrDuplicateEmail, domain.ErrUsernameTaken, domain.ErrStoreUnavailable} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
