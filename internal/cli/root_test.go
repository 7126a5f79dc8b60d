package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/signup-service/internal/config"
	"github.com/spec-kit/signup-service/internal/domain"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "authctl", cmd.Use)

	for _, name := range []string{"migrate", "inspect-token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	migrate, _, err := cmd.Find([]string{"migrate"})
	require.NoError(t, err)
	dirFlag := migrate.Flags().Lookup("dir")
	require.NotNil(t, dirFlag)
	assert.Equal(t, "d", dirFlag.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"inspect-token", "x", "--format", "yaml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func setTestEnv(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("BASE_URL", "https://auth.example.com")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestInspectTokenJSON(t *testing.T) {
	cfg := setTestEnv(t)
	tokens, err := NewTokenManager(cfg)
	require.NoError(t, err)
	issued, err := tokens.GenerateToken(42, domain.TokenUseRefresh)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect-token", issued.Token, "--format", "json"})
	require.NoError(t, cmd.Execute())

	var report TokenReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, issued.ID, report.TokenID)
	assert.Equal(t, domain.TokenUseRefresh, report.Use)
	assert.Equal(t, "42", report.Subject)
	assert.Equal(t, "https://auth.example.com", report.Issuer)
	assert.WithinDuration(t, issued.ExpiresAt, report.ExpiresAt, time.Second)
	assert.Nil(t, report.GrantLive)
}

func TestInspectTokenText(t *testing.T) {
	cfg := setTestEnv(t)
	tokens, err := NewTokenManager(cfg)
	require.NoError(t, err)
	issued, err := tokens.GenerateToken(7, domain.TokenUseAccess)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect-token", issued.Token})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "subject: 7")
	assert.Contains(t, out.String(), "use:     access")
}

func TestInspectTokenRejectsForeignSecret(t *testing.T) {
	cfg := setTestEnv(t)
	cfg.Auth.JWTSecret = "other-secret"
	tokens, err := NewTokenManager(cfg)
	require.NoError(t, err)
	issued, err := tokens.GenerateToken(7, domain.TokenUseAccess)
	require.NoError(t, err)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"inspect-token", issued.Token})

	err = cmd.Execute()
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
