package driven

import (
	"context"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// SensorPublisher defines the driven port for pushing entity state and
// notifications to the home-automation host.
type SensorPublisher interface {
	Publish(ctx context.Context, state model.SensorState) error
	// Remove deletes an entity's state. Removing an unknown entity is not an error.
	Remove(ctx context.Context, entityID string) error
	Notify(ctx context.Context, n model.Notification) error
	Dismiss(ctx context.Context, notificationID string) error
}
