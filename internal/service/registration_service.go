package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/signup-service/internal/cache"
	"github.com/spec-kit/signup-service/internal/domain"
	"github.com/spec-kit/signup-service/internal/events"
	"github.com/spec-kit/signup-service/internal/repository"
)

// RegistrationService stages unverified registrations behind an authcode and
// promotes them to accounts once the code is verified.
type RegistrationService struct {
	codes      *AuthCodeService
	accounts   repository.AccountRepository
	cache      cache.Store
	usernames  *UsernameAllocator
	tokens     *TokenService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// RegistrationDependencies encapsulates collaborators of the registration service.
type RegistrationDependencies struct {
	AuthCodes  *AuthCodeService
	Accounts   repository.AccountRepository
	Cache      cache.Store
	Usernames  *UsernameAllocator
	Tokens     *TokenService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewRegistrationService builds the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		codes:      deps.AuthCodes,
		accounts:   deps.Accounts,
		cache:      deps.Cache,
		usernames:  deps.Usernames,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

// Register rejects emails that already belong to an account, issues an
// authcode for the email and stages profile behind it.
func (s *RegistrationService) Register(ctx context.Context, profile domain.Profile) (*domain.AuthCode, error) {
	if err := s.ensureEmailFree(ctx, profile.Email); err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if err := s.Stage(ctx, *code, profile); err != nil {
		return nil, err
	}
	return code, nil
}

// Stage writes profile to the cache under the code's key, expiring together
// with the code.
func (s *RegistrationService) Stage(ctx context.Context, code domain.AuthCode, profile domain.Profile) error {
	ttl := code.RemainingAt(s.now())
	if ttl <= 0 {
		return domain.ErrCodeExpired
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode staged registration: %w", err)
	}
	if err := s.cache.SetWithTTL(ctx, cache.StagedRegistrationKey(code.ID, code.Code), payload, ttl); err != nil {
		return storeFailure("stage registration", err)
	}

	s.logger.Debug("registration staged", zap.String("authcode_id", code.ID), zap.Duration("ttl", ttl))
	return nil
}

// Promote verifies (id, candidate), consumes the staged registration and
// creates the account.
//
// The staged entry is removed before the duplicate check and the insert, so a
// promotion that fails after verification cannot be retried with the same
// code; the caller has to request a new one.
func (s *RegistrationService) Promote(ctx context.Context, id, candidate string) (*domain.Account, error) {
	code, err := s.codes.Verify(ctx, id, candidate)
	if err != nil {
		return nil, err
	}

	data, err := s.cache.GetAndDelete(ctx, cache.StagedRegistrationKey(code.ID, code.Code))
	if errors.Is(err, cache.ErrMiss) {
		return nil, domain.ErrStagingNotFound
	}
	if err != nil {
		return nil, storeFailure("consume staged registration", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode staged registration: %w", err)
	}

	if err := s.ensureEmailFree(ctx, profile.Email); err != nil {
		return nil, err
	}

	username, err := s.usernames.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:    username,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		Birthdate:   profile.Birthdate,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeFailure("insert account", err)
	}

	s.logger.Info("account registered", zap.Int64("user_id", account.ID), zap.String("username", account.Username))
	s.publish(ctx, account)
	return account, nil
}

// Complete promotes the registration and mints tokens for the new account.
func (s *RegistrationService) Complete(ctx context.Context, id, candidate string) (*domain.Account, *domain.TokenPair, error) {
	account, err := s.Promote(ctx, id, candidate)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := s.tokens.Mint(ctx, *account)
	if err != nil {
		return account, nil, err
	}
	return account, tokens, nil
}

// IsRegisteredEmail reports whether an account already uses email.
func (s *RegistrationService) IsRegisteredEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeFailure("select account by email", err)
	}
	return true, nil
}

func (s *RegistrationService) ensureEmailFree(ctx context.Context, email string) error {
	registered, err := s.IsRegisteredEmail(ctx, email)
	if err != nil {
		return err
	}
	if registered {
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *RegistrationService) publish(ctx context.Context, account *domain.Account) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountRegistered,
		Subject:   account.Email,
		Timestamp: s.now(),
		Payload: events.AccountRegisteredPayload{
			AccountID: account.ID,
			Username:  account.Username,
			Email:     account.Email,
		},
	})
	if err != nil {
		s.logger.Warn("account_registered handlers failed", zap.Int64("user_id", account.ID), zap.Error(err))
	}
}
