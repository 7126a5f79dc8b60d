package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/config"
	"github.com/spec-kit/signup-service/internal/domain"
	"github.com/spec-kit/signup-service/internal/events"
	"github.com/spec-kit/signup-service/internal/repository"
)

// AuthCodeService issues authcodes and matches candidate codes against them.
type AuthCodeService struct {
	codes      repository.AuthCodeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	codeLength int
	ttl        time.Duration
	now        func() time.Time
}

// NewAuthCodeService builds the service.
func NewAuthCodeService(cfg config.AuthConfig, codes repository.AuthCodeRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuthCodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthCodeService{
		codes:      codes,
		dispatcher: dispatcher,
		logger:     logger,
		codeLength: cfg.AuthCodeLength,
		ttl:        cfg.AuthCodeTTL(),
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *AuthCodeService) WithClock(now func() time.Time) *AuthCodeService {
	s.now = now
	return s
}

// Issue creates a new authcode for email. Earlier live codes for the same
// email stay valid until they expire.
func (s *AuthCodeService) Issue(ctx context.Context, email string) (*domain.AuthCode, error) {
	value, err := auth.GenerateCode(s.codeLength)
	if err != nil {
		return nil, err
	}

	now := s.now()
	code := &domain.AuthCode{
		ID:        uuid.NewString(),
		Code:      value,
		Email:     email,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.codes.Create(ctx, code); err != nil {
		return nil, storeFailure("insert authcode", err)
	}

	s.logger.Info("authcode issued", zap.String("authcode_id", code.ID), zap.Time("expires_at", code.ExpiresAt))
	s.publish(ctx, code)
	return code, nil
}

// Verify matches (id, candidate) against the stored code. Unknown ids and wrong
// values both yield domain.ErrCodeMismatch; expiry is only reported after a match.
// The record is left untouched.
func (s *AuthCodeService) Verify(ctx context.Context, id, candidate string) (*domain.AuthCode, error) {
	code, err := s.codes.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCodeMismatch
	}
	if err != nil {
		return nil, storeFailure("select authcode", err)
	}

	if code.Deleted || subtle.ConstantTimeCompare([]byte(code.Code), []byte(candidate)) != 1 {
		return nil, domain.ErrCodeMismatch
	}
	if code.ExpiredAt(s.now()) {
		return nil, domain.ErrCodeExpired
	}
	return code, nil
}

func (s *AuthCodeService) publish(ctx context.Context, code *domain.AuthCode) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAuthCodeIssued,
		Subject:   code.ID,
		Timestamp: code.CreatedAt,
		Payload: events.AuthCodeIssuedPayload{
			AuthCodeID: code.ID,
			Email:      code.Email,
			Code:       code.Code,
			ExpiresAt:  code.ExpiresAt,
		},
	})
	if err != nil {
		s.logger.Warn("authcode_issued handlers failed", zap.String("authcode_id", code.ID), zap.Error(err))
	}
}
