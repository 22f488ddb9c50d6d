package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

// CartService owns the draft cart aggregate and its lifecycle:
//
//	draft --submit--> requested --approve--> accepted
//	                           \--reject--> rejected
//
// Approve/reject happen on the reviewer side; this service only ever
// moves a cart from draft to requested. Uniqueness rules (one draft per
// borrower, one line per inventory item) are enforced by the store and
// recovered here when a concurrent caller wins the race.
type CartService struct {
	store port.Store
	cache port.CacheRepository
	log   Logger
	now   func() time.Time
}

// NewCartService builds the service. cache may be nil; the submission
// guard then relies on the store's state check alone.
func NewCartService(store port.Store, cache port.CacheRepository, log Logger) *CartService {
	return &CartService{
		store: store,
		cache: cache,
		log:   ensureLogger(log),
		now:   time.Now,
	}
}

// GetOrCreateDraft returns the borrower's draft cart, creating one if
// none exists. Losing the creation race to a concurrent caller is not an
// error: the store rejects the duplicate and the winner's row is
// returned, first write wins.
func (s *CartService) GetOrCreateDraft(ctx context.Context, borrowerID int64) (domain.Cart, error) {
	filter := port.Filter{
		port.Eq("borrower_id", borrowerID),
		port.Eq("status", string(domain.CartStatusDraft)),
	}

	rows, err := s.store.Query(ctx, cartTable, filter)
	if err != nil {
		return domain.Cart{}, err
	}
	if len(rows) > 0 {
		return cartFromRow(rows[0]), nil
	}

	record := port.Row{
		"borrower_id": borrowerID,
		"status":      string(domain.CartStatusDraft),
		"created_at":  s.now().UTC(),
	}
	inserted, err := s.store.Insert(ctx, cartTable, record)
	if err == nil {
		return cartFromRow(inserted), nil
	}
	if domain.IsConflict(err) {
		rows, qerr := s.store.Query(ctx, cartTable, filter)
		if qerr != nil {
			return domain.Cart{}, qerr
		}
		if len(rows) > 0 {
			return cartFromRow(rows[0]), nil
		}
	}
	return domain.Cart{}, err
}

// AddItem merges quantity into the cart's line for the given inventory
// item and returns the refreshed line list. Repeated adds sum; they never
// create a second row for the same item. Over-requesting against the
// remaining quantity is allowed here and reported at submission.
func (s *CartService) AddItem(ctx context.Context, cart domain.Cart, item domain.InventoryItem, quantity int) ([]domain.CartLine, error) {
	if !cart.Mutable() {
		return nil, &domain.InvalidStateError{Entity: "cart", From: string(cart.Status), Action: "add item"}
	}
	if quantity <= 0 {
		return nil, &domain.ValidationError{Reason: "quantity must be at least 1"}
	}

	if err := s.upsertLine(ctx, cart, item.ID, quantity); err != nil {
		return nil, err
	}
	return s.ListItems(ctx, cart)
}

func (s *CartService) upsertLine(ctx context.Context, cart domain.Cart, inventoryID int64, quantity int) error {
	filter := port.Filter{
		port.Eq("cart_id", cart.ID),
		port.Eq("inventory_id", inventoryID),
	}

	rows, err := s.store.Query(ctx, cartItemTable, filter)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return s.mergeLine(ctx, filter, cartItemFromRow(rows[0]), quantity)
	}

	record := port.Row{
		"cart_id":      cart.ID,
		"inventory_id": inventoryID,
		"quantity":     quantity,
		"return_date":  s.today().AddDate(0, 0, domain.DefaultLoanDays),
	}
	_, err = s.store.Insert(ctx, cartItemTable, record)
	if err == nil {
		return nil
	}
	if !domain.IsConflict(err) {
		return err
	}

	// A concurrent add won the insert; fold our quantity into that row.
	rows, qerr := s.store.Query(ctx, cartItemTable, filter)
	if qerr != nil {
		return qerr
	}
	if len(rows) == 0 {
		return err
	}
	return s.mergeLine(ctx, filter, cartItemFromRow(rows[0]), quantity)
}

func (s *CartService) mergeLine(ctx context.Context, filter port.Filter, existing domain.CartItem, quantity int) error {
	if existing.Quantity+quantity <= 0 {
		return &domain.ValidationError{Reason: "merged quantity must be at least 1"}
	}
	// Relative update so concurrent merges never lose each other.
	_, err := s.store.Update(ctx, cartItemTable, filter, port.Row{"quantity": port.Delta(quantity)})
	return err
}

// RemoveItem deletes the cart's line for the given inventory item.
// Removing an absent line is a no-op, not an error, so retries after a
// transient failure are safe.
func (s *CartService) RemoveItem(ctx context.Context, cart domain.Cart, inventoryID int64) error {
	if !cart.Mutable() {
		return &domain.InvalidStateError{Entity: "cart", From: string(cart.Status), Action: "remove item"}
	}
	_, err := s.store.Delete(ctx, cartItemTable, port.Filter{
		port.Eq("cart_id", cart.ID),
		port.Eq("inventory_id", inventoryID),
	})
	return err
}

// UpdateReturnDate sets a line's desired return date. Today is the
// earliest acceptable date.
func (s *CartService) UpdateReturnDate(ctx context.Context, cart domain.Cart, cartItemID int64, date time.Time) error {
	if !cart.Mutable() {
		return &domain.InvalidStateError{Entity: "cart", From: string(cart.Status), Action: "change return date"}
	}

	day := civilDate(date)
	if day.Before(s.today()) {
		return &domain.ValidationError{Reason: "return date cannot be in the past"}
	}

	filter := port.Filter{
		port.Eq("id", cartItemID),
		port.Eq("cart_id", cart.ID),
	}
	// Existence is checked explicitly: MySQL reports zero affected rows
	// for updates that leave the value unchanged.
	rows, err := s.store.Query(ctx, cartItemTable, filter)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &domain.NotFoundError{Entity: "cart item", Key: cartItemID}
	}

	_, err = s.store.Update(ctx, cartItemTable, filter, port.Row{"return_date": day})
	return err
}

// ListItems returns the cart's lines joined with the current inventory
// snapshot, in line id order.
func (s *CartService) ListItems(ctx context.Context, cart domain.Cart) ([]domain.CartLine, error) {
	rows, err := s.store.Query(ctx, cartItemTable, port.Filter{port.Eq("cart_id", cart.ID)}, port.Order{Column: "id"})
	if err != nil {
		return nil, err
	}

	invRows, err := s.store.Query(ctx, inventoryTable, nil)
	if err != nil {
		return nil, err
	}
	index := inventoryByID(invRows)

	lines := make([]domain.CartLine, 0, len(rows))
	for _, r := range rows {
		item := cartItemFromRow(r)
		lines = append(lines, domain.CartLine{
			CartItem:  item,
			Inventory: index[item.InventoryID],
		})
	}
	return lines, nil
}

// Submit moves the cart from draft to requested. The store's state check
// is the authority against double submits; the cache guard merely rejects
// the obvious duplicate early. Shortfalls against the current remaining
// quantities are returned as advisory data, they do not block submission.
// The next GetOrCreateDraft starts a fresh cart; nothing is created
// eagerly here.
func (s *CartService) Submit(ctx context.Context, cart domain.Cart) (domain.Cart, []domain.StockShortfall, error) {
	if cart.Status != domain.CartStatusDraft {
		return cart, nil, &domain.InvalidStateError{Entity: "cart", From: string(cart.Status), Action: "submit"}
	}

	lines, err := s.ListItems(ctx, cart)
	if err != nil {
		return cart, nil, err
	}
	if len(lines) == 0 {
		return cart, nil, &domain.ValidationError{Reason: "cannot submit an empty cart"}
	}

	guardKey := fmt.Sprintf("cart:%d", cart.ID)
	guarded := false
	if s.cache != nil {
		ok, err := s.cache.SetSubmissionGuard(ctx, guardKey)
		if err != nil {
			// The store check below still protects; degrade, don't fail.
			s.log.Warn("submission guard unavailable", "cart_id", cart.ID, "error", err)
		} else if !ok {
			return cart, nil, &domain.ConflictError{
				Table: cartTable,
				Err:   errors.New("submission already in flight"),
			}
		} else {
			guarded = true
		}
	}

	affected, err := s.store.Update(ctx, cartTable,
		port.Filter{
			port.Eq("id", cart.ID),
			port.Eq("status", string(domain.CartStatusDraft)),
		},
		port.Row{"status": string(domain.CartStatusRequested)},
	)
	if err != nil {
		// Free the guard so the caller can re-issue the submission.
		if guarded {
			if rerr := s.cache.ReleaseSubmissionGuard(ctx, guardKey); rerr != nil {
				s.log.Warn("submission guard release failed", "cart_id", cart.ID, "error", rerr)
			}
		}
		return cart, nil, err
	}
	if affected == 0 {
		return cart, nil, &domain.InvalidStateError{
			Entity: "cart",
			From:   s.currentStatus(ctx, cart.ID),
			Action: "submit",
		}
	}

	var shortfalls []domain.StockShortfall
	for _, line := range lines {
		if line.Quantity > line.Inventory.RemainingQuantity {
			shortfalls = append(shortfalls, domain.StockShortfall{
				InventoryID: line.InventoryID,
				Name:        line.Inventory.Name,
				Requested:   line.Quantity,
				Remaining:   line.Inventory.RemainingQuantity,
			})
		}
	}

	cart.Status = domain.CartStatusRequested
	return cart, shortfalls, nil
}

func (s *CartService) currentStatus(ctx context.Context, cartID int64) string {
	rows, err := s.store.Query(ctx, cartTable, port.Filter{port.Eq("id", cartID)})
	if err != nil || len(rows) == 0 {
		return "unknown"
	}
	return rowString(rows[0], "status")
}

func (s *CartService) today() time.Time {
	return civilDate(s.now())
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
