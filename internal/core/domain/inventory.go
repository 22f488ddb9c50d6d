package domain

type InventoryStatus string

const (
	InventoryStatusAvailable   InventoryStatus = "available"
	InventoryStatusBorrowed    InventoryStatus = "borrowed"
	InventoryStatusUnavailable InventoryStatus = "unavailable"
)

type InventoryItem struct {
	ID                int64
	Name              string
	Description       string
	TotalQuantity     int
	RemainingQuantity int
	Location          string
	Status            InventoryStatus
}

// EffectiveStatus derives the visible status from the remaining quantity.
// An administrative "unavailable" override sticks regardless of quantity;
// otherwise the quantity, not the stored status, is authoritative.
func (i InventoryItem) EffectiveStatus() InventoryStatus {
	if i.Status == InventoryStatusUnavailable {
		return InventoryStatusUnavailable
	}
	if i.RemainingQuantity > 0 {
		return InventoryStatusAvailable
	}
	return InventoryStatusBorrowed
}
