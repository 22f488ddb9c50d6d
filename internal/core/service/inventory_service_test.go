package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

func TestInventoryList_StableOrderByID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	// Insert out of order; listing must come back sorted by id.
	for _, row := range []port.Row{
		{"id": int64(3), "name": "charlie", "quantity": 1, "remaining_quantity": 1, "status": "available"},
		{"id": int64(1), "name": "alpha", "quantity": 1, "remaining_quantity": 1, "status": "available"},
		{"id": int64(2), "name": "bravo", "quantity": 1, "remaining_quantity": 1, "status": "available"},
	} {
		_, err := st.Insert(ctx, inventoryTable, row)
		require.NoError(t, err)
	}

	svc := NewInventoryService(st, nil, discardLogger())
	items, err := svc.List(ctx)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{items[0].ID, items[1].ID, items[2].ID})
}

func TestInventoryList_DerivesStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	_, err := st.Insert(ctx, inventoryTable, port.Row{
		"name": "depleted", "quantity": 5, "remaining_quantity": 0, "status": "available",
	})
	require.NoError(t, err)
	_, err = st.Insert(ctx, inventoryTable, port.Row{
		"name": "pulled", "quantity": 5, "remaining_quantity": 5, "status": "unavailable",
	})
	require.NoError(t, err)
	_, err = st.Insert(ctx, inventoryTable, port.Row{
		"name": "in stock", "quantity": 5, "remaining_quantity": 2, "status": "available",
	})
	require.NoError(t, err)

	svc := NewInventoryService(st, nil, discardLogger())
	items, err := svc.List(ctx)
	require.NoError(t, err)

	byName := map[string]domain.InventoryStatus{}
	for _, item := range items {
		byName[item.Name] = item.Status
	}
	assert.Equal(t, domain.InventoryStatusBorrowed, byName["depleted"])
	assert.Equal(t, domain.InventoryStatusUnavailable, byName["pulled"], "administrative override sticks")
	assert.Equal(t, domain.InventoryStatusAvailable, byName["in stock"])
}

func TestInventoryList_ServedFromSnapshot(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	seedInventory(t, st, "cached item", 3, 3)

	cache := newFakeCache()
	svc := NewInventoryService(st, cache, discardLogger())

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutate the store behind the cache's back; within the TTL the
	// snapshot wins.
	seedInventory(t, st, "new arrival", 1, 1)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInventoryList_FallsBackWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	seedInventory(t, st, "resilient", 2, 2)

	cache := newFakeCache()
	cache.readErr = errors.New("redis down")
	svc := NewInventoryService(st, cache, discardLogger())

	items, err := svc.List(ctx)
	require.NoError(t, err, "cache failure must not break listing")
	assert.Len(t, items, 1)
}

func TestInventoryGet(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	item := seedInventory(t, st, "findable", 4, 4)

	svc := NewInventoryService(st, nil, discardLogger())

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "findable", got.Name)

	_, err = svc.Get(ctx, 999)
	assert.True(t, domain.IsNotFound(err))
}
