package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvitka-shop/flower-bot/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	state := models.NewSessionState("u1")
	state.State = models.StateAwaitingBouquetChoice
	state.BouquetOptions = "Букет 1"
	require.NoError(t, store.Put(ctx, state))

	loaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.StateAwaitingBouquetChoice, loaded.State)
	assert.Equal(t, "Букет 1", loaded.BouquetOptions)

	// The store hands out copies; mutating the loaded state must not
	// leak back without a Put.
	loaded.BouquetOptions = "changed"
	again, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Букет 1", again.BouquetOptions)
}

func TestMemoryStoreMissingSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	loaded, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreExpiryLooksFresh(t *testing.T) {
	now := time.Date(2024, 11, 4, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(600 * time.Second)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	state := models.NewSessionState("u1")
	state.State = models.StateAwaitingPurchaseConfirm
	state.BouquetFlowers = map[string]int{"Троянда": 3}
	require.NoError(t, store.Put(ctx, state))

	// Just inside the idle TTL the session is still there.
	now = now.Add(599 * time.Second)
	loaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// The read refreshed the TTL; let it lapse fully.
	now = now.Add(601 * time.Second)
	loaded, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "an expired session must be indistinguishable from a missing one")
}

func TestMemoryStoreLastWriterWins(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	first := models.NewSessionState("u1")
	first.DialogStage = models.StageContinued
	require.NoError(t, store.Put(ctx, first))

	second := models.NewSessionState("u1")
	second.DialogStage = models.StageBouquetProcessing
	require.NoError(t, store.Put(ctx, second))

	loaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.StageBouquetProcessing, loaded.DialogStage)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, models.NewSessionState("u1")))
	require.NoError(t, store.Delete(ctx, "u1"))

	loaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
