package worker

import (
	"go.uber.org/zap"

	"github.com/launchlist/waitlist-service/internal/config"
	"github.com/launchlist/waitlist-service/internal/events"
	"github.com/launchlist/waitlist-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// ConnectForwarder opens the NATS forwarder when a URL is configured. A failed
// connection is logged and leaves forwarding disabled.
func ConnectForwarder(cfg config.EventsConfig, logger *zap.Logger) *events.NATSForwarder {
	if cfg.NATSURL == "" {
		return nil
	}
	forwarder, err := events.NewNATSForwarder(cfg.NATSURL, cfg.SubjectPrefix)
	if err != nil {
		logger.Warn("event forwarding disabled", zap.Error(err))
		return nil
	}
	logger.Info("forwarding events to NATS", zap.String("subject_prefix", cfg.SubjectPrefix))
	return forwarder
}
