package observability

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/signup-service/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/users/register", "POST", 200, time.Millisecond)
	m.RecordRequest("/users/register", "POST", 200, time.Millisecond)
	m.RecordError("/users/register/verify", "POST", "AUTHCODE_EXPIRED")
	m.RecordEvent("authcode_issued")
	m.RecordOutcome("verify", "expired")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/users/register|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/users/register/verify|POST|AUTHCODE_EXPIRED"])
	assert.Equal(t, int64(1), snap.Events["authcode_issued"])

	snap.Events["authcode_issued"] = 99
	assert.Equal(t, int64(1), m.Snapshot().Events["authcode_issued"])
	assert.Equal(t, int64(1), snap.Outcomes["verify|expired"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordEvent("x")
	m.RecordOutcome("verify", "ok")
	assert.Empty(t, m.Snapshot().Events)
}

func TestNewLoggerWithRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "service.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", File: file, RotationHours: 1, MaxAgeHours: 2})
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	matches, err := filepath.Glob(file + ".*")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"hello"`)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "verbose"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(0))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Post("/users/register", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusConflict)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/users/register", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(fiber.StatusConflict), fields["status"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/users/register", fields["path"])
	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/users/register|POST|409"])
}
