package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusBorrowed TransactionStatus = "borrowed"
	TransactionStatusReturned TransactionStatus = "returned"
	TransactionStatusOverdue  TransactionStatus = "overdue"
)

// Transaction is the historical record of an actual borrow/return cycle.
// It is written by the reviewer side; this core only reads it. Damage and
// fine fields are finalized when the status reaches "returned".
type Transaction struct {
	ID              int64
	InventoryID     int64
	BorrowerID      int64
	Quantity        int
	BorrowDate      time.Time
	ReturnDate      *time.Time
	Status          TransactionStatus
	DamagedQuantity *int
	FineAmount      *float64
	DamageImageRef  *string
}

// TransactionView is a transaction joined with its inventory snapshot.
type TransactionView struct {
	Transaction
	Inventory InventoryItem
}
