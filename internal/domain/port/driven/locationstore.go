package driven

import "context"

// LocationStore caches resolved start-location names per activity so the
// geocoder is called at most once per activity.
type LocationStore interface {
	// Get returns the cached name, or "" when nothing is cached.
	Get(ctx context.Context, activityID int64) (string, error)
	Set(ctx context.Context, activityID int64, name string) error
	// Prune deletes cached names for activities not in keep.
	Prune(ctx context.Context, keep []int64) error
}
