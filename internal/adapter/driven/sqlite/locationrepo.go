package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LocationStore = (*LocationRepo)(nil)

// LocationRepo is the SQLite implementation of the LocationStore port interface.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo backed by the given DB.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Get returns the cached place name for an activity, or "" if none is cached.
func (r *LocationRepo) Get(ctx context.Context, activityID int64) (string, error) {
	const query = `SELECT name FROM locations WHERE activity_id = ?`
	var name string
	err := r.db.Reader.QueryRowContext(ctx, query, activityID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get location for activity %d: %w", activityID, err)
	}
	return name, nil
}

// Set caches a resolved place name. Idempotent; a later name replaces an earlier one.
func (r *LocationRepo) Set(ctx context.Context, activityID int64, name string) error {
	const query = `
		INSERT INTO locations (activity_id, name, resolved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET name = excluded.name, resolved_at = excluded.resolved_at
	`
	if _, err := r.db.Writer.ExecContext(ctx, query, activityID, name); err != nil {
		return fmt.Errorf("set location for activity %d: %w", activityID, err)
	}
	return nil
}

// Prune deletes cached names for every activity not in keep. An empty keep
// list empties the cache.
func (r *LocationRepo) Prune(ctx context.Context, keep []int64) error {
	query := `DELETE FROM locations`
	args := make([]any, 0, len(keep))
	if len(keep) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
		query += ` WHERE activity_id NOT IN (` + placeholders + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune locations: %w", err)
	}
	return nil
}
