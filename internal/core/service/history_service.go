package service

import (
	"context"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

// HistoryService is the read side: the borrower's transaction ledger and
// the request-history projection over submitted carts. Nothing here
// writes; reviewer updates show up on the next fetch.
type HistoryService struct {
	store port.Store
	log   Logger
}

func NewHistoryService(store port.Store, log Logger) *HistoryService {
	return &HistoryService{
		store: store,
		log:   ensureLogger(log),
	}
}

// Transactions lists the borrower's borrow/return records, newest borrow
// first, each joined with its inventory snapshot. An empty history is an
// empty slice, never an error.
func (s *HistoryService) Transactions(ctx context.Context, borrowerID int64) ([]domain.TransactionView, error) {
	rows, err := s.store.Query(ctx, transactionTable,
		port.Filter{port.Eq("borrower_id", borrowerID)},
		port.Order{Column: "borrow_date", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	invRows, err := s.store.Query(ctx, inventoryTable, nil)
	if err != nil {
		return nil, err
	}
	index := inventoryByID(invRows)

	views := make([]domain.TransactionView, 0, len(rows))
	for _, r := range rows {
		tx := transactionFromRow(r)
		views = append(views, domain.TransactionView{
			Transaction: tx,
			Inventory:   index[tx.InventoryID],
		})
	}
	return views, nil
}

// Requests lists the borrower's submitted carts, newest first, with their
// lines joined against the inventory snapshot. Draft carts never appear
// here.
func (s *HistoryService) Requests(ctx context.Context, borrowerID int64) ([]domain.RequestView, error) {
	cartRows, err := s.store.Query(ctx, cartTable,
		port.Filter{
			port.Eq("borrower_id", borrowerID),
			port.Neq("status", string(domain.CartStatusDraft)),
		},
		port.Order{Column: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	invRows, err := s.store.Query(ctx, inventoryTable, nil)
	if err != nil {
		return nil, err
	}
	index := inventoryByID(invRows)

	views := make([]domain.RequestView, 0, len(cartRows))
	for _, cr := range cartRows {
		cart := cartFromRow(cr)

		itemRows, err := s.store.Query(ctx, cartItemTable,
			port.Filter{port.Eq("cart_id", cart.ID)},
			port.Order{Column: "id"},
		)
		if err != nil {
			return nil, err
		}

		lines := make([]domain.CartLine, 0, len(itemRows))
		for _, ir := range itemRows {
			item := cartItemFromRow(ir)
			lines = append(lines, domain.CartLine{
				CartItem:  item,
				Inventory: index[item.InventoryID],
			})
		}

		views = append(views, domain.RequestView{Cart: cart, Items: lines})
	}
	return views, nil
}
