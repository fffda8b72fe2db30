package driven

import (
	"context"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// Geocoder defines the driven port for best-effort reverse geocoding.
type Geocoder interface {
	// ReverseGeocode returns a human-readable place name for the coordinate.
	// Any non-success response, including throttling, is an error.
	ReverseGeocode(ctx context.Context, at model.LatLng) (string, error)
}
