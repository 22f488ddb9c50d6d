package domain

import "time"

type CartStatus string

const (
	CartStatusDraft     CartStatus = "draft"
	CartStatusRequested CartStatus = "requested"
	CartStatusAccepted  CartStatus = "accepted"
	CartStatusRejected  CartStatus = "rejected"
)

// DefaultLoanDays is the return-date default applied when a line is added.
const DefaultLoanDays = 7

type Cart struct {
	ID         int64
	BorrowerID int64
	Status     CartStatus
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// Mutable reports whether the borrower may still change the cart.
// Only draft carts accept add/remove/date changes; everything after
// submission is read-only on this side.
func (c Cart) Mutable() bool {
	return c.Status == CartStatusDraft
}

type CartItem struct {
	ID          int64
	CartID      int64
	InventoryID int64
	Quantity    int
	ReturnDate  time.Time
}

// CartLine is a cart item joined with the inventory snapshot it refers to.
type CartLine struct {
	CartItem
	Inventory InventoryItem
}

// StockShortfall reports a line whose requested quantity exceeds what is
// currently available. Shortfalls are advisory: submission still goes
// through and the reviewer decides.
type StockShortfall struct {
	InventoryID int64
	Name        string
	Requested   int
	Remaining   int
}

// RequestView is a submitted (non-draft) cart with its lines, as shown in
// the borrower's request history.
type RequestView struct {
	Cart
	Items []CartLine
}
