package keyring_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/ericfisherdev/hastrava/internal/adapter/driven/keyring"
	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

func TestStore_SaveLoadClear(t *testing.T) {
	gokeyring.MockInit()
	store := keyring.NewStore("hastrava-test")
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty keyring")

	creds := model.Credentials{
		ClientID:     "123",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		AthleteID:    9,
	}
	require.NoError(t, store.Save(ctx, creds))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.Equal(t, int64(9), got.AthleteID)
	assert.True(t, creds.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing a missing entry is a no-op")

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DefaultService(t *testing.T) {
	gokeyring.MockInit()
	store := keyring.NewStore("")

	require.NoError(t, store.Save(context.Background(), model.Credentials{RefreshToken: "r"}))

	raw, err := gokeyring.Get(keyring.DefaultService, "strava")
	require.NoError(t, err)
	assert.Contains(t, raw, `"refresh_token":"r"`)
}

func TestStore_CanceledContext(t *testing.T) {
	gokeyring.MockInit()
	store := keyring.NewStore("hastrava-test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStore_CorruptEntry(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set("hastrava-test", "strava", "not-json"))

	_, err := keyring.NewStore("hastrava-test").Load(context.Background())
	require.Error(t, err)
}
