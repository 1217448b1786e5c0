package services

import (
	"context"

	"github.com/sirupsen/logrus"
)

// NotificationDispatcher delivers a message to a person. Implementations must
// never return an error to the caller: delivery failures are logged and
// swallowed at this boundary so they cannot fail an assignment operation.
type NotificationDispatcher interface {
	Notify(ctx context.Context, recipientID uint64, title, message, priority string)
}

// ActivityLogger records an audit trail entry, with the same best-effort
// contract as NotificationDispatcher.
type ActivityLogger interface {
	Record(ctx context.Context, actorID uint64, action, entityType string, entityID uint64, metadata map[string]interface{})
}

// LogNotificationDispatcher writes notifications to the structured log. It is
// the stand-in transport until the host wires a real one.
type LogNotificationDispatcher struct {
	log *logrus.Logger
}

func NewLogNotificationDispatcher(log *logrus.Logger) *LogNotificationDispatcher {
	return &LogNotificationDispatcher{log: log}
}

func (d *LogNotificationDispatcher) Notify(ctx context.Context, recipientID uint64, title, message, priority string) {
	d.log.WithFields(logrus.Fields{
		"recipient_id": recipientID,
		"title":        title,
		"priority":     priority,
	}).Info(message)
}

// LogActivityLogger writes audit entries to the structured log.
type LogActivityLogger struct {
	log *logrus.Logger
}

func NewLogActivityLogger(log *logrus.Logger) *LogActivityLogger {
	return &LogActivityLogger{log: log}
}

func (l *LogActivityLogger) Record(ctx context.Context, actorID uint64, action, entityType string, entityID uint64, metadata map[string]interface{}) {
	l.log.WithFields(logrus.Fields{
		"actor_id":    actorID,
		"action":      action,
		"entity_type": entityType,
		"entity_id":   entityID,
		"metadata":    metadata,
	}).Info("activity recorded")
}
