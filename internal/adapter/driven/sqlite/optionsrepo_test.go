package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

func TestOptionsRepo_GetUnset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db)

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOptionsRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db)
	ctx := context.Background()

	opts := model.Options{
		SlotCount:  3,
		UnitSystem: model.UnitSystemImperial,
		KPIs:       [model.KPIsPerSlot]model.KPI{model.KPIPace, model.KPICalories, model.KPIKudos, model.KPIPower, model.KPITitle},
		Geocode:    false,
	}
	require.NoError(t, repo.Set(ctx, opts))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, opts, *got)
}

func TestOptionsRepo_SetClampsAndOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOptionsRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.DefaultOptions()))

	opts := model.DefaultOptions()
	opts.SlotCount = 99
	require.NoError(t, repo.Set(ctx, opts))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.MaxSlots, got.SlotCount)

	var rows int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM options`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
