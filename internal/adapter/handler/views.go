package handler

import (
	"time"

	"github.com/rl1809/borrowhub/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type inventoryJSON struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Quantity          int    `json:"quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	Location          string `json:"location"`
	Status            string `json:"status"`
}

type cartJSON struct {
	ID         int64   `json:"id"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	ReviewedAt *string `json:"reviewed_at"`
}

type lineJSON struct {
	ID          int64         `json:"id"`
	InventoryID int64         `json:"inventory_id"`
	Quantity    int           `json:"quantity"`
	ReturnDate  string        `json:"return_date"`
	Inventory   inventoryJSON `json:"inventory"`
}

type cartResponse struct {
	Cart  cartJSON   `json:"cart"`
	Items []lineJSON `json:"items"`
}

type shortfallJSON struct {
	InventoryID int64  `json:"inventory_id"`
	Name        string `json:"name"`
	Requested   int    `json:"requested"`
	Remaining   int    `json:"remaining"`
}

type submitResponse struct {
	Cart       cartJSON        `json:"cart"`
	Shortfalls []shortfallJSON `json:"shortfalls,omitempty"`
}

type requestJSON struct {
	Cart  cartJSON   `json:"cart"`
	Items []lineJSON `json:"items"`
}

type transactionJSON struct {
	ID              int64         `json:"id"`
	InventoryID     int64         `json:"inventory_id"`
	Quantity        int           `json:"quantity"`
	BorrowDate      string        `json:"borrow_date"`
	ReturnDate      *string       `json:"return_date"`
	Status          string        `json:"status"`
	DamagedQuantity *int          `json:"damaged_quantity,omitempty"`
	FineAmount      *float64      `json:"fine_amount,omitempty"`
	DamageImageRef  *string       `json:"damage_image,omitempty"`
	Inventory       inventoryJSON `json:"inventory"`
}

func inventoryToJSON(item domain.InventoryItem) inventoryJSON {
	return inventoryJSON{
		ID:                item.ID,
		Name:              item.Name,
		Description:       item.Description,
		Quantity:          item.TotalQuantity,
		RemainingQuantity: item.RemainingQuantity,
		Location:          item.Location,
		Status:            string(item.Status),
	}
}

func cartToJSON(cart domain.Cart) cartJSON {
	out := cartJSON{
		ID:        cart.ID,
		Status:    string(cart.Status),
		CreatedAt: cart.CreatedAt.Format(time.RFC3339),
	}
	if cart.ReviewedAt != nil {
		reviewed := cart.ReviewedAt.Format(time.RFC3339)
		out.ReviewedAt = &reviewed
	}
	return out
}

func linesToJSON(lines []domain.CartLine) []lineJSON {
	out := make([]lineJSON, 0, len(lines))
	for _, line := range lines {
		out = append(out, lineJSON{
			ID:          line.ID,
			InventoryID: line.InventoryID,
			Quantity:    line.Quantity,
			ReturnDate:  line.ReturnDate.Format(dateLayout),
			Inventory:   inventoryToJSON(line.Inventory),
		})
	}
	return out
}

func transactionToJSON(v domain.TransactionView) transactionJSON {
	out := transactionJSON{
		ID:              v.ID,
		InventoryID:     v.InventoryID,
		Quantity:        v.Quantity,
		BorrowDate:      v.BorrowDate.Format(time.RFC3339),
		Status:          string(v.Status),
		DamagedQuantity: v.DamagedQuantity,
		FineAmount:      v.FineAmount,
		DamageImageRef:  v.DamageImageRef,
		Inventory:       inventoryToJSON(v.Inventory),
	}
	if v.ReturnDate != nil {
		returned := v.ReturnDate.Format(time.RFC3339)
		out.ReturnDate = &returned
	}
	return out
}
