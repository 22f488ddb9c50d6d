package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

func TestRequests_ExcludesDraftsAndOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	item := seedInventory(t, st, "projector", 10, 10)

	reviewed := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	carts := []port.Row{
		{"borrower_id": int64(1), "status": "draft", "created_at": time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)},
		{"borrower_id": int64(1), "status": "requested", "created_at": time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"borrower_id": int64(1), "status": "accepted", "created_at": time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), "reviewed_at": reviewed},
		{"borrower_id": int64(2), "status": "rejected", "created_at": time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
	}
	var cartIDs []int64
	for _, row := range carts {
		inserted, err := st.Insert(ctx, cartTable, row)
		require.NoError(t, err)
		cartIDs = append(cartIDs, rowInt64(inserted, "id"))
	}

	_, err := st.Insert(ctx, cartItemTable, port.Row{
		"cart_id": cartIDs[2], "inventory_id": item.ID, "quantity": 2,
		"return_date": time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	svc := NewHistoryService(st, discardLogger())
	views, err := svc.Requests(ctx, 1)
	require.NoError(t, err)

	require.Len(t, views, 2, "draft and other-borrower carts are excluded")
	assert.Equal(t, domain.CartStatusAccepted, views[0].Status, "newest first")
	assert.Equal(t, domain.CartStatusRequested, views[1].Status)

	require.NotNil(t, views[0].ReviewedAt)
	assert.True(t, views[0].ReviewedAt.Equal(reviewed))

	require.Len(t, views[0].Items, 1)
	assert.Equal(t, "projector", views[0].Items[0].Inventory.Name)
	assert.Equal(t, 2, views[0].Items[0].Quantity)
	assert.Empty(t, views[1].Items)
}

func TestRequests_EmptyHistory(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	svc := NewHistoryService(st, discardLogger())
	views, err := svc.Requests(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestTransactions_OrderedByBorrowDateDesc(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	item := seedInventory(t, st, "camera", 5, 3)

	dates := []time.Time{
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		_, err := st.Insert(ctx, transactionTable, port.Row{
			"inventory_id": item.ID, "borrower_id": int64(1), "quantity": 1,
			"borrow_date": d, "status": "borrowed",
		})
		require.NoError(t, err)
	}
	// Another borrower's record must not leak in.
	_, err := st.Insert(ctx, transactionTable, port.Row{
		"inventory_id": item.ID, "borrower_id": int64(2), "quantity": 1,
		"borrow_date": time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC), "status": "borrowed",
	})
	require.NoError(t, err)

	svc := NewHistoryService(st, discardLogger())
	views, err := svc.Transactions(ctx, 1)
	require.NoError(t, err)

	require.Len(t, views, 3)
	assert.True(t, views[0].BorrowDate.After(views[1].BorrowDate))
	assert.True(t, views[1].BorrowDate.After(views[2].BorrowDate))
	assert.Equal(t, "camera", views[0].Inventory.Name)
}

func TestTransactions_DamageAndFineFields(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	item := seedInventory(t, st, "lens", 2, 1)

	returned := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.Insert(ctx, transactionTable, port.Row{
		"inventory_id": item.ID, "borrower_id": int64(1), "quantity": 1,
		"borrow_date": time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		"return_date": returned, "status": "returned",
		"damaged_quantity": 1, "fine_amount": 25.50, "damage_image": "damage/abc123.jpg",
	})
	require.NoError(t, err)

	svc := NewHistoryService(st, discardLogger())
	views, err := svc.Transactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)

	tx := views[0]
	assert.Equal(t, domain.TransactionStatusReturned, tx.Status)
	require.NotNil(t, tx.ReturnDate)
	assert.True(t, tx.ReturnDate.Equal(returned))
	require.NotNil(t, tx.DamagedQuantity)
	assert.Equal(t, 1, *tx.DamagedQuantity)
	require.NotNil(t, tx.FineAmount)
	assert.InDelta(t, 25.50, *tx.FineAmount, 0.001)
	require.NotNil(t, tx.DamageImageRef)
	assert.Equal(t, "damage/abc123.jpg", *tx.DamageImageRef)
}

func TestTransactions_EmptyHistory(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	svc := NewHistoryService(st, discardLogger())
	views, err := svc.Transactions(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestBorrowerIDFor(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()

	inserted, err := st.Insert(ctx, borrowerTable, port.Row{
		"auth_id": "auth-abc", "email": "borrower@example.com",
	})
	require.NoError(t, err)
	want := rowInt64(inserted, "id")

	dir := NewBorrowerDirectory(st)

	got, err := dir.BorrowerIDFor(ctx, "auth-abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = dir.BorrowerIDFor(ctx, "auth-missing")
	assert.True(t, domain.IsNotFound(err), "missing profile is a hard not-found")
}
