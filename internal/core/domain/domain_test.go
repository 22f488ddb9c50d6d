package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	cases := []struct {
		name string
		item InventoryItem
		want InventoryStatus
	}{
		{"in stock", InventoryItem{RemainingQuantity: 3, Status: InventoryStatusAvailable}, InventoryStatusAvailable},
		{"depleted", InventoryItem{RemainingQuantity: 0, Status: InventoryStatusAvailable}, InventoryStatusBorrowed},
		{"stale stored status", InventoryItem{RemainingQuantity: 2, Status: InventoryStatusBorrowed}, InventoryStatusAvailable},
		{"pulled overrides stock", InventoryItem{RemainingQuantity: 5, Status: InventoryStatusUnavailable}, InventoryStatusUnavailable},
		{"pulled and depleted", InventoryItem{RemainingQuantity: 0, Status: InventoryStatusUnavailable}, InventoryStatusUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.item.EffectiveStatus())
		})
	}
}

func TestCartMutable(t *testing.T) {
	assert.True(t, Cart{Status: CartStatusDraft}.Mutable())
	for _, status := range []CartStatus{CartStatusRequested, CartStatusAccepted, CartStatusRejected} {
		assert.False(t, Cart{Status: status}.Mutable(), "status %s", status)
	}
}

func TestErrorMatching(t *testing.T) {
	conflict := &ConflictError{Table: "cart", Err: errors.New("duplicate key")}
	notFound := &NotFoundError{Entity: "cart item", Key: int64(7)}

	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConflict(notFound))
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))

	// Wrapping must not hide the classification.
	wrapped := &UpstreamError{Op: "insert into cart", Err: conflict}
	assert.True(t, IsConflict(wrapped))
}
