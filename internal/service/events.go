package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"moments_api/internal/queue"
)

// publish sends an activity event after the change has been committed. A
// failure is logged and never reaches the caller.
func publish(ctx context.Context, publisher queue.Publisher, event queue.ActivityEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("type", event.Type).Warn("Failed to publish activity event")
	}
}
