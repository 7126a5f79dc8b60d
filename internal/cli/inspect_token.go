package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/signup-service/internal/auth"
	"github.com/spec-kit/signup-service/internal/cache"
	"github.com/spec-kit/signup-service/internal/config"
	"github.com/spec-kit/signup-service/internal/domain"
	"github.com/spec-kit/signup-service/internal/persistence"
	"github.com/spec-kit/signup-service/internal/service"
)

// TokenReport describes a parsed token and, optionally, its grant.
type TokenReport struct {
	TokenID   string             `json:"jti"`
	Use       domain.TokenUse    `json:"use"`
	Subject   string             `json:"sub"`
	Issuer    string             `json:"iss"`
	IssuedAt  time.Time          `json:"iat"`
	ExpiresAt time.Time          `json:"exp"`
	Grant     *domain.TokenGrant `json:"grant,omitempty"`
	GrantLive *bool              `json:"grant_live,omitempty"`
}

// NewInspectTokenCommand creates the inspect-token command.
func NewInspectTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var checkGrant bool

	cmd := &cobra.Command{
		Use:   "inspect-token <token>",
		Short: "Verify a token and print its claims",
		Long: `Verify the signature, issuer and lifetime of a token with the configured
secret and print its claims. With --grant the token's grant is looked up in Redis.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			tokens, err := NewTokenManager(cfg)
			if err != nil {
				return err
			}
			report, err := inspectToken(tokens, args[0])
			if err != nil {
				return err
			}

			if checkGrant {
				rdb := persistence.NewRedis(cmd.Context(), cfg.Redis, logger)
				defer rdb.Close()
				grants := service.NewTokenService(tokens, cache.NewRedisStore(rdb.Client), logger)
				if err := attachGrant(cmd, grants, report, args[0]); err != nil {
					return err
				}
			}
			return writeReport(cmd.OutOrStdout(), rootOpts.Format, report)
		},
	}

	cmd.Flags().BoolVar(&checkGrant, "grant", false, "look up the token grant in Redis")
	return cmd
}

// NewTokenManager builds the token manager the API server uses for cfg.
func NewTokenManager(cfg *config.Config) (*auth.TokenManager, error) {
	return auth.NewTokenManager(auth.TokenManagerConfig{
		Secret:     cfg.Auth.JWTSecret,
		Algorithm:  cfg.Auth.JWTAlgorithm,
		Issuer:     cfg.App.BaseURL,
		AccessTTL:  cfg.Auth.AccessTokenTTL(),
		RefreshTTL: cfg.Auth.RefreshTokenTTL(),
	})
}

func inspectToken(tokens *auth.TokenManager, token string) (*TokenReport, error) {
	claims, err := tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	report := &TokenReport{
		TokenID: claims.ID,
		Use:     claims.Use,
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		report.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		report.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return report, nil
}

func attachGrant(cmd *cobra.Command, grants *service.TokenService, report *TokenReport, token string) error {
	grant, err := grants.Introspect(cmd.Context(), token)
	live := err == nil
	switch {
	case err == nil:
		report.Grant = grant
	case errors.Is(err, domain.ErrTokenRevoked):
	default:
		return err
	}
	report.GrantLive = &live
	return nil
}

func writeReport(w io.Writer, format string, report *TokenReport) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "jti:     %s\n", report.TokenID)
	fmt.Fprintf(w, "use:     %s\n", report.Use)
	fmt.Fprintf(w, "subject: %s\n", report.Subject)
	fmt.Fprintf(w, "issuer:  %s\n", report.Issuer)
	fmt.Fprintf(w, "issued:  %s\n", report.IssuedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "expires: %s\n", report.ExpiresAt.Format(time.RFC3339))
	if report.GrantLive != nil {
		fmt.Fprintf(w, "grant:   %t\n", *report.GrantLive)
	}
	if report.Grant != nil {
		fmt.Fprintf(w, "account: %s <%s>\n", report.Grant.Account.Username, report.Grant.Account.Email)
	}
	return nil
}
