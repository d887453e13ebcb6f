package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/backend/internal/domain/dispensing"
)

func TestInMemorySessionStore(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	operatorID := uuid.New()
	storeID := uuid.New()

	// missing session reads as nil without error
	got, err := store.Get(ctx, operatorID)
	require.NoError(t, err)
	assert.Nil(t, got)

	session := dispensing.NewSession(operatorID, storeID)
	session.State = dispensing.SessionMedicineSearched
	require.NoError(t, store.Put(ctx, session))

	got, err = store.Get(ctx, operatorID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, dispensing.SessionMedicineSearched, got.State)
	assert.Equal(t, storeID, got.StoreID)

	require.NoError(t, store.Delete(ctx, operatorID))
	got, err = store.Get(ctx, operatorID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemorySessionStore_TTLExpiry(t *testing.T) {
	store := NewInMemorySessionStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	session := dispensing.NewSession(uuid.New(), uuid.New())
	require.NoError(t, store.Put(ctx, session))

	time.Sleep(20 * time.Millisecond)

	got, err := store.Get(ctx, session.OperatorID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemorySessionStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour)
	store.Close()
	store.Close()
}
