package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/config"
	"github.com/spec-kit/lead-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLeadCreated, n.handleLeadCreated)
	n.dispatcher.Subscribe(events.EventLeadUpdated, n.handleLeadUpdated)
	n.dispatcher.Subscribe(events.EventLeadDeleted, n.handleLeadDeleted)
}

func (n *NotificationService) handleLeadCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("LeadCreated", zap.String("lead_id", event.LeadID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLeadUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("LeadUpdated", zap.String("lead_id", event.LeadID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLeadDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("LeadDeleted", zap.String("lead_id", event.LeadID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("lead_id", event.LeadID),
		zap.String("event_type", string(event.Type)))
}
