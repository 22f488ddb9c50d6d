package domain

// User is the authenticated identity handed to us by the external
// identity service. It is not the borrower: carts and transactions are
// scoped to the borrower profile resolved from it.
type User struct {
	ID    string
	Email string
}

type Borrower struct {
	ID     int64
	AuthID string
	Email  string
}
