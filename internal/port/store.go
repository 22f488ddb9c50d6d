package port

import "context"

// Row is a single record as exchanged with the backing store.
type Row map[string]any

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
)

type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Filter is a conjunction of column conditions. An empty filter matches
// every row.
type Filter []Cond

func Eq(column string, value any) Cond {
	return Cond{Column: column, Op: OpEq, Value: value}
}

func Neq(column string, value any) Cond {
	return Cond{Column: column, Op: OpNeq, Value: value}
}

type Order struct {
	Column string
	Desc   bool
}

// Delta marks a numeric patch value as relative: the store applies it
// atomically on top of the current value (`col = col + n`). Concurrent
// merges must not lose updates, so quantity merges go through this.
type Delta int64

// Store is the generic persistence port. The core issues discrete
// request/response calls through it and never assumes ordering between
// concurrent calls. Implementations must enforce the schema's uniqueness
// constraints and surface violations as *domain.ConflictError; transport
// and query failures come back as *domain.UpstreamError.
type Store interface {
	// Query returns the rows of table matching filter, in the given order.
	Query(ctx context.Context, table string, filter Filter, order ...Order) ([]Row, error)

	// Insert persists record and returns the stored row, including
	// generated columns such as the id.
	Insert(ctx context.Context, table string, record Row) (Row, error)

	// Update applies patch to every row matching filter and returns the
	// number of rows affected.
	Update(ctx context.Context, table string, filter Filter, patch Row) (int64, error)

	// Delete removes the rows matching filter and returns how many went
	// away. Deleting nothing is not an error.
	Delete(ctx context.Context, table string, filter Filter) (int64, error)
}
