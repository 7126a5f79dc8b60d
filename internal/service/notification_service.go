package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/signup-service/internal/config"
	"github.com/spec-kit/signup-service/internal/events"
	"github.com/spec-kit/signup-service/internal/observability"
)

// NotificationService handles emitting notifications for domain events.
// Delivery is stubbed: messages are logged, never sent.
type NotificationService struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	cfg     config.NotificationConfig

	// revealCodes logs the code itself so local flows can be completed without a mailer.
	revealCodes bool
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig, revealCodes bool) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger:      logger,
		metrics:     metrics,
		cfg:         cfg,
		revealCodes: revealCodes,
	}
}

// EventTypes lists the events Notify handles.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{events.EventAuthCodeIssued, events.EventAccountRegistered}
}

// Notify delivers the notification for event. Unknown event types are ignored.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventAuthCodeIssued:
		return n.handleAuthCodeIssued(ctx, event)
	case events.EventAccountRegistered:
		return n.handleAccountRegistered(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleAuthCodeIssued(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	payload, ok := event.Payload.(events.AuthCodeIssuedPayload)
	if !ok {
		n.logger.Warn("AuthCodeIssued with unexpected payload", zap.String("event_id", event.ID))
		return nil
	}

	n.logger.Info("AuthCodeIssued", zap.String("authcode_id", payload.AuthCodeID), zap.Time("expires_at", payload.ExpiresAt))
	fields := []zap.Field{zap.String("to", payload.Email), zap.String("authcode_id", payload.AuthCodeID)}
	if n.revealCodes {
		fields = append(fields, zap.String("code", payload.Code))
	}
	n.sendEmailNotificationStub(ctx, event, fields...)
	return nil
}

func (n *NotificationService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("AccountRegistered", zap.String("subject", event.Subject), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, fields ...zap.Field) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub", append([]zap.Field{
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)),
	}, fields...)...)
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}
