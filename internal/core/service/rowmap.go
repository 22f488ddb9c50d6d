package service

import (
	"strconv"
	"time"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

// Backing table names, as declared in schema.sql.
const (
	inventoryTable   = "inventory"
	borrowerTable    = "borrowers"
	cartTable        = "cart"
	cartItemTable    = "cart_items"
	transactionTable = "transactions"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

func rowInt64(r port.Row, col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func rowInt(r port.Row, col string) int {
	return int(rowInt64(r, col))
}

func rowString(r port.Row, col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func rowFloat(r port.Row, col string) (float64, bool) {
	switch v := r[col].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	}
	return 0, false
}

func rowTime(r port.Row, col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func rowTimePtr(r port.Row, col string) *time.Time {
	if r[col] == nil {
		return nil
	}
	t := rowTime(r, col)
	if t.IsZero() {
		return nil
	}
	return &t
}

func rowIntPtr(r port.Row, col string) *int {
	if r[col] == nil {
		return nil
	}
	n := rowInt(r, col)
	return &n
}

func rowFloatPtr(r port.Row, col string) *float64 {
	if r[col] == nil {
		return nil
	}
	if f, ok := rowFloat(r, col); ok {
		return &f
	}
	return nil
}

func rowStringPtr(r port.Row, col string) *string {
	if r[col] == nil {
		return nil
	}
	s := rowString(r, col)
	return &s
}

func inventoryFromRow(r port.Row) domain.InventoryItem {
	return domain.InventoryItem{
		ID:                rowInt64(r, "id"),
		Name:              rowString(r, "name"),
		Description:       rowString(r, "description"),
		TotalQuantity:     rowInt(r, "quantity"),
		RemainingQuantity: rowInt(r, "remaining_quantity"),
		Location:          rowString(r, "location"),
		Status:            domain.InventoryStatus(rowString(r, "status")),
	}
}

func cartFromRow(r port.Row) domain.Cart {
	return domain.Cart{
		ID:         rowInt64(r, "id"),
		BorrowerID: rowInt64(r, "borrower_id"),
		Status:     domain.CartStatus(rowString(r, "status")),
		CreatedAt:  rowTime(r, "created_at"),
		ReviewedAt: rowTimePtr(r, "reviewed_at"),
	}
}

func cartItemFromRow(r port.Row) domain.CartItem {
	return domain.CartItem{
		ID:          rowInt64(r, "id"),
		CartID:      rowInt64(r, "cart_id"),
		InventoryID: rowInt64(r, "inventory_id"),
		Quantity:    rowInt(r, "quantity"),
		ReturnDate:  rowTime(r, "return_date"),
	}
}

func transactionFromRow(r port.Row) domain.Transaction {
	return domain.Transaction{
		ID:              rowInt64(r, "id"),
		InventoryID:     rowInt64(r, "inventory_id"),
		BorrowerID:      rowInt64(r, "borrower_id"),
		Quantity:        rowInt(r, "quantity"),
		BorrowDate:      rowTime(r, "borrow_date"),
		ReturnDate:      rowTimePtr(r, "return_date"),
		Status:          domain.TransactionStatus(rowString(r, "status")),
		DamagedQuantity: rowIntPtr(r, "damaged_quantity"),
		FineAmount:      rowFloatPtr(r, "fine_amount"),
		DamageImageRef:  rowStringPtr(r, "damage_image"),
	}
}

// inventoryByID indexes a full inventory query so cart lines and
// transactions can be joined in memory with one extra round trip.
func inventoryByID(rows []port.Row) map[int64]domain.InventoryItem {
	index := make(map[int64]domain.InventoryItem, len(rows))
	for _, r := range rows {
		item := inventoryFromRow(r)
		index[item.ID] = item
	}
	return index
}
