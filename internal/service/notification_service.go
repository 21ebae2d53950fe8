package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gavelworks/auction-service/internal/config"
	"github.com/gavelworks/auction-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventAuctionCreated, n.handleAuctionCreated)
	n.dispatcher.Subscribe(events.EventAuctionStatusChanged, n.handleAuctionStatusChanged)
	n.dispatcher.Subscribe(events.EventBidPlaced, n.handleBidPlaced)
	n.dispatcher.Subscribe(events.EventLotSold, n.handleLotSold)
	n.dispatcher.Subscribe(events.EventLotUnsold, n.handleLotUnsold)
}

func (n *NotificationService) handleAuctionCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AuctionCreated", zap.String("auction_id", event.AuctionID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAuctionStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AuctionStatusChanged", zap.String("auction_id", event.AuctionID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBidPlaced(ctx context.Context, event events.Event) error {
	n.logger.Info("BidPlaced", zap.String("auction_id", event.AuctionID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLotSold(ctx context.Context, event events.Event) error {
	n.logger.Info("LotSold", zap.String("auction_id", event.AuctionID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLotUnsold(ctx context.Context, event events.Event) error {
	n.logger.Info("LotUnsold", zap.String("auction_id", event.AuctionID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("auction_id", event.AuctionID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("auction_id", event.AuctionID),
		zap.String("event_type", string(event.Type)))
}
