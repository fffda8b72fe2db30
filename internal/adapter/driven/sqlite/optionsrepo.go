package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OptionsStore = (*OptionsRepo)(nil)

// OptionsRepo is the SQLite implementation of the OptionsStore port interface.
// Options live in a single row with id 1.
type OptionsRepo struct {
	db *DB
}

// NewOptionsRepo creates a new OptionsRepo backed by the given DB.
func NewOptionsRepo(db *DB) *OptionsRepo {
	return &OptionsRepo{db: db}
}

// Get retrieves the saved options. Returns (nil, nil) if options were never
// saved; callers should apply defaults.
func (r *OptionsRepo) Get(ctx context.Context) (*model.Options, error) {
	const query = `SELECT slot_count, unit_system, kpis, geocode FROM options WHERE id = 1`

	var (
		opts    model.Options
		unit    string
		kpisRaw string
	)
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&opts.SlotCount, &unit, &kpisRaw, &opts.Geocode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get options: %w", err)
	}
	opts.UnitSystem = model.UnitSystem(unit)

	if err := json.Unmarshal([]byte(kpisRaw), &opts.KPIs); err != nil {
		return nil, fmt.Errorf("decode kpis: %w", err)
	}

	normalized := opts.Normalized()
	return &normalized, nil
}

// Set inserts or replaces the options row. The slot count is clamped first.
func (r *OptionsRepo) Set(ctx context.Context, opts model.Options) error {
	opts = opts.Normalized()

	kpis, err := json.Marshal(opts.KPIs)
	if err != nil {
		return fmt.Errorf("encode kpis: %w", err)
	}

	const query = `
		INSERT INTO options (id, slot_count, unit_system, kpis, geocode, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			slot_count = excluded.slot_count,
			unit_system = excluded.unit_system,
			kpis = excluded.kpis,
			geocode = excluded.geocode,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.Writer.ExecContext(ctx, query, opts.SlotCount, string(opts.UnitSystem), string(kpis), opts.Geocode); err != nil {
		return fmt.Errorf("set options: %w", err)
	}
	return nil
}
