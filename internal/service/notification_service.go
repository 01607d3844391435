package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/contacts-api/internal/events"
)

// NotificationService observes account events for audit logging. It never
// participates in request error handling; the verification email itself is
// sent synchronously by AuthService.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleAccountEvent)
	n.dispatcher.Subscribe(events.EventUserVerified, n.handleAccountEvent)
	n.dispatcher.Subscribe(events.EventUserSignedIn, n.handleAccountEvent)
	n.dispatcher.Subscribe(events.EventUserSignedOut, n.handleAccountEvent)
	n.dispatcher.Subscribe(events.EventAvatarUpdated, n.handleAccountEvent)
	n.dispatcher.Subscribe(events.EventContactCreated, n.handleAccountEvent)
}

func (n *NotificationService) handleAccountEvent(_ context.Context, event events.Event) error {
	n.logger.Info("account event",
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	return nil
}
