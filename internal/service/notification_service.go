package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/launchlist/waitlist-service/internal/events"
)

// OutcomeRecorder counts domain outcomes, typically observability.Metrics.
type OutcomeRecorder interface {
	RecordOutcome(name string)
}

// NotificationService reacts to domain events by logging them, counting them
// and relaying them to an optional external forwarder.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	recorder   OutcomeRecorder
	forward    events.EventHandler
}

// NewNotificationService creates the service. recorder and forward may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, recorder OutcomeRecorder, forward events.EventHandler) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		recorder:   recorder,
		forward:    forward,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSignupCreated, n.handleSignupCreated)
	for _, eventType := range []events.EventType{
		events.EventAdminLoginSucceeded,
		events.EventAdminLoginFailed,
		events.EventAdminLoginBlocked,
		events.EventAdminLoggedOut,
	} {
		n.dispatcher.Subscribe(eventType, n.handleAdminEvent)
	}
	if n.forward != nil {
		for _, eventType := range events.AllEventTypes {
			n.dispatcher.Subscribe(eventType, n.forward)
		}
	}
}

func (n *NotificationService) handleSignupCreated(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("event_id", event.ID)}
	if payload, ok := event.Payload.(events.SignupCreatedPayload); ok {
		fields = append(fields,
			zap.String("signup_id", payload.SignupID),
			zap.String("source", payload.Source),
			zap.Bool("has_referrer", payload.HasRef))
	}
	n.logger.Info("SignupCreated", fields...)
	n.record(event.Type)
	return nil
}

func (n *NotificationService) handleAdminEvent(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("event_id", event.ID), zap.String("event_type", string(event.Type))}
	if payload, ok := event.Payload.(events.AdminAuthPayload); ok {
		fields = append(fields, zap.String("client_id", payload.ClientID), zap.String("session_id", payload.SessionID))
	}
	n.logger.Debug("AdminAuthEvent", fields...)
	n.record(event.Type)
	return nil
}

func (n *NotificationService) record(eventType events.EventType) {
	if n.recorder == nil {
		return
	}
	n.recorder.RecordOutcome(string(eventType))
}
