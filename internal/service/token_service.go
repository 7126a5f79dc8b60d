package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/cache"
	"github.com/spec-kit/signup-service/internal/domain"
)

// TokenService mints signed tokens and tracks their grants in the cache.
type TokenService struct {
	tokens *auth.TokenManager
	cache  cache.Store
	logger *zap.Logger
}

// NewTokenService builds the service.
func NewTokenService(tokens *auth.TokenManager, store cache.Store, logger *zap.Logger) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{tokens: tokens, cache: store, logger: logger}
}

// Mint issues an access and a refresh token for account, recording a grant
// with the account snapshot for each.
func (s *TokenService) Mint(ctx context.Context, account domain.Account) (*domain.TokenPair, error) {
	access, err := s.issue(ctx, account, domain.TokenUseAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(ctx, account, domain.TokenUseRefresh)
	if err != nil {
		// an access token that was never handed out must not stay usable
		if delErr := s.cache.Delete(ctx, cache.TokenGrantKey(access.ID)); delErr != nil {
			s.logger.Warn("drop orphaned access grant", zap.String("jti", access.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("tokens minted", zap.Int64("user_id", account.ID))
	return &domain.TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		TokenType:        domain.TokenTypeBearer,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *TokenService) issue(ctx context.Context, account domain.Account, use domain.TokenUse) (*auth.IssuedToken, error) {
	issued, err := s.tokens.GenerateToken(account.ID, use)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", use, err)
	}

	grant := domain.TokenGrant{
		TokenID:   issued.ID,
		Use:       use,
		Account:   account,
		IssuedAt:  issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}
	payload, err := json.Marshal(grant)
	if err != nil {
		return nil, fmt.Errorf("encode token grant: %w", err)
	}
	if err := s.cache.SetWithTTL(ctx, cache.TokenGrantKey(issued.ID), payload, s.tokens.TTL(use)); err != nil {
		return nil, storeFailure("store token grant", err)
	}
	return issued, nil
}

// Introspect validates token and returns its live grant. A token whose grant
// is gone (revoked or expired) yields domain.ErrTokenRevoked.
func (s *TokenService) Introspect(ctx context.Context, token string) (*domain.TokenGrant, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}

	data, err := s.cache.Get(ctx, cache.TokenGrantKey(claims.ID))
	if errors.Is(err, cache.ErrMiss) {
		return nil, domain.ErrTokenRevoked
	}
	if err != nil {
		return nil, storeFailure("load token grant", err)
	}

	var grant domain.TokenGrant
	if err := json.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("decode token grant: %w", err)
	}
	if grant.Use != claims.Use || grant.TokenID != claims.ID {
		return nil, domain.ErrTokenInvalid
	}
	return &grant, nil
}

// Revoke drops the grant of token so later introspection fails.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cache.TokenGrantKey(claims.ID)); err != nil {
		return storeFailure("delete token grant", err)
	}
	s.logger.Info("token revoked", zap.String("jti", claims.ID), zap.String("use", string(claims.Use)))
	return nil
}

// Logout revokes the access token and, when given, the refresh token minted
// alongside it. The refresh token must be a refresh token for the same account.
func (s *TokenService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var refresh *auth.Claims
	if refreshToken != "" {
		access, err := s.tokens.ParseToken(accessToken)
		if err != nil {
			return err
		}
		refresh, err = s.tokens.ParseToken(refreshToken)
		if err != nil {
			return err
		}
		if refresh.Use != domain.TokenUseRefresh || refresh.Subject != access.Subject {
			return fmt.Errorf("%w: refresh token does not belong to this session", domain.ErrTokenInvalid)
		}
	}

	if err := s.Revoke(ctx, accessToken); err != nil {
		return err
	}
	if refresh == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, cache.TokenGrantKey(refresh.ID)); err != nil {
		return storeFailure("delete token grant", err)
	}
	s.logger.Info("token revoked", zap.String("jti", refresh.ID), zap.String("use", string(refresh.Use)))
	return nil
}

// TokenManager exposes the underlying token manager.
func (s *TokenService) TokenManager() *auth.TokenManager {
	return s.tokens
}
