package service

import (
	"context"

	"github.com/rl1809/borrowhub/internal/core/domain"
	"github.com/rl1809/borrowhub/internal/port"
)

// BorrowerDirectory maps authenticated users onto borrower profiles.
// Every cart and transaction is scoped by the borrower id, never by the
// raw identity.
type BorrowerDirectory struct {
	store port.Store
}

func NewBorrowerDirectory(store port.Store) *BorrowerDirectory {
	return &BorrowerDirectory{store: store}
}

// BorrowerIDFor resolves the borrower profile linked to an authenticated
// user id. A missing profile is a hard NotFoundError: without it no
// operation in this core makes sense.
func (d *BorrowerDirectory) BorrowerIDFor(ctx context.Context, authUserID string) (int64, error) {
	rows, err := d.store.Query(ctx, borrowerTable, port.Filter{port.Eq("auth_id", authUserID)})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, &domain.NotFoundError{Entity: "borrower", Key: authUserID}
	}
	return rowInt64(rows[0], "id"), nil
}
