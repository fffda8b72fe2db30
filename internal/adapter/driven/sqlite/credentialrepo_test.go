package sqlite

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func sampleCredentials() model.Credentials {
	return model.Credentials{
		ClientID:     "123",
		ClientSecret: "shh",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		AthleteID:    4242,
	}
}

func TestCredentialRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCredentials()))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.Equal(t, "123", got.ClientID)
	assert.Equal(t, int64(4242), got.AthleteID)
	assert.True(t, sampleCredentials().ExpiresAt.Equal(got.ExpiresAt))
}

func TestCredentialRepo_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialRepo_SaveOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCredentials()))

	updated := sampleCredentials()
	updated.AccessToken = "access-2"
	require.NoError(t, repo.Save(ctx, updated))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)

	var count int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCredentialRepo_StoredValueIsEncrypted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCredentials()))

	var raw string
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT value FROM credentials WHERE service = 'strava'`).Scan(&raw))
	assert.NotContains(t, raw, "refresh")
	assert.NotContains(t, raw, "access")
}

func TestCredentialRepo_WrongKeyFailsToDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCredentialRepo(db, testKey).Save(ctx, sampleCredentials()))

	other := NewCredentialRepo(db, bytes.Repeat([]byte{0x07}, 32))
	_, err := other.Load(ctx)
	require.Error(t, err)
}

func TestCredentialRepo_Clear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleCredentials()))
	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx), "clearing twice is a no-op")

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialRepo_NoKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)
	ctx := context.Background()

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	err = repo.Save(ctx, sampleCredentials())
	require.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}
