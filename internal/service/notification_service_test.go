package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/signup-service/internal/config"
	"github.com/spec-kit/signup-service/internal/events"
	"github.com/spec-kit/signup-service/internal/observability"
)

func issuedEvent() events.Event {
	return events.Event{
		ID:   "evt-1",
		Type: events.EventAuthCodeIssued,
		Payload: events.AuthCodeIssuedPayload{
			AuthCodeID: "code-1",
			Email:      "a@x.com",
			Code:       "123456",
			ExpiresAt:  time.Date(2024, 3, 1, 12, 10, 0, 0, time.UTC),
		},
	}
}

func TestNotifyRevealsCodeOnlyWhenEnabled(t *testing.T) {
	for _, reveal := range []bool{true, false} {
		core, logs := observer.New(zapcore.DebugLevel)
		metrics := observability.NewMetrics()
		svc := NewNotificationService(zap.New(core), metrics, config.NotificationConfig{EmailFrom: "noreply@example.com"}, reveal)

		require.NoError(t, svc.Notify(context.Background(), issuedEvent()))

		sent := logs.FilterMessage("sendEmailNotificationStub").All()
		require.Len(t, sent, 1)
		_, hasCode := sent[0].ContextMap()["code"]
		assert.Equal(t, reveal, hasCode)
		assert.Equal(t, "a@x.com", sent[0].ContextMap()["to"])
		assert.Equal(t, int64(1), metrics.Snapshot().Events[string(events.EventAuthCodeIssued)])
	}
}

func TestNotifyAccountRegisteredWebhookStub(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(zap.New(core), nil, config.NotificationConfig{WebhookURL: "https://hooks.example.com"}, false)

	err := svc.Notify(context.Background(), events.Event{
		ID:      "evt-2",
		Type:    events.EventAccountRegistered,
		Subject: "a@x.com",
		Payload: events.AccountRegisteredPayload{AccountID: 1, Username: "abc", Email: "a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotifyIgnoresUnknownEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewNotificationService(zap.New(core), nil, config.NotificationConfig{}, false)

	require.NoError(t, svc.Notify(context.Background(), events.Event{Type: "something_else"}))
	assert.Zero(t, logs.Len())
	assert.ElementsMatch(t, []events.EventType{events.EventAuthCodeIssued, events.EventAccountRegistered}, svc.EventTypes())
}
