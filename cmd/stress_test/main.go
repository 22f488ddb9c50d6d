package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rl1809/borrowhub/internal/adapter/storage"
	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/core/service"
	"github.com/rl1809/borrowhub/internal/port"
)

// Hammers the draft-cart invariants with concurrent callers against the
// in-memory store: every GetOrCreateDraft must agree on one cart id, and
// concurrent adds of the same item must collapse into a single line with
// the summed quantity.
const (
	borrowerID  = int64(1)
	inventoryID = int64(1)
	callers     = 50
	addQuantity = 2
)

func main() {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := storage.NewMemoryStore()
	store.AddUniqueKey("cart", storage.UniqueKey{
		Columns: []string{"borrower_id"},
		When:    port.Filter{port.Eq("status", "draft")},
	})
	store.AddUniqueKey("cart_items", storage.UniqueKey{
		Columns: []string{"cart_id", "inventory_id"},
	})

	if _, err := store.Insert(ctx, "inventory", port.Row{
		"name":               "projector",
		"description":        "ceiling projector",
		"quantity":           200,
		"remaining_quantity": 200,
		"location":           "storage b",
		"status":             "available",
	}); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}

	carts := service.NewCartService(store, nil, log)

	var wg sync.WaitGroup
	ids := make([]int64, callers)
	errs := make([]error, callers)
	start := time.Now()

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cart, err := carts.GetOrCreateDraft(ctx, borrowerID)
			if err != nil {
				errs[n] = err
				return
			}
			ids[n] = cart.ID
			item := domain.InventoryItem{ID: inventoryID}
			if _, err := carts.AddItem(ctx, cart, item, addQuantity); err != nil {
				errs[n] = err
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}

	draftID := ids[0]
	sameID := true
	for _, id := range ids {
		if id != 0 && id != draftID {
			sameID = false
		}
		if id != 0 && draftID == 0 {
			draftID = id
		}
	}

	cart, err := carts.GetOrCreateDraft(ctx, borrowerID)
	if err != nil {
		log.Error("final fetch failed", "error", err)
		os.Exit(1)
	}
	lines, err := carts.ListItems(ctx, cart)
	if err != nil {
		log.Error("final list failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("========== RACE CHECK RESULTS ==========")
	fmt.Printf("Concurrent callers: %d\n", callers)
	fmt.Printf("Call failures:      %d\n", failures)
	fmt.Printf("Duration:           %v\n", elapsed)
	fmt.Printf("Draft cart id:      %d (all agree: %v)\n", cart.ID, sameID)
	fmt.Printf("Cart lines:         %d\n", len(lines))
	if len(lines) == 1 {
		fmt.Printf("Line quantity:      %d (expected %d)\n", lines[0].Quantity, (callers-failures)*addQuantity)
	}
	fmt.Println("========================================")

	pass := sameID && len(lines) == 1 && failures == 0 && lines[0].Quantity == callers*addQuantity
	if pass {
		fmt.Println("PASS: one draft, one merged line, no lost updates")
	} else {
		fmt.Println("FAIL: invariants violated")
		os.Exit(1)
	}
}
