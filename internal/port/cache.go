package port

import "context"

type CacheRepository interface {
	// SetSubmissionGuard sets a one-time guard for a cart submission,
	// returns false if the guard is already held (double submit).
	SetSubmissionGuard(ctx context.Context, key string) (bool, error)

	// ReleaseSubmissionGuard frees the guard so a submission that failed
	// at the store can be retried.
	ReleaseSubmissionGuard(ctx context.Context, key string) error

	// ReadInventorySnapshot returns the cached inventory listing, or nil
	// when absent or expired.
	ReadInventorySnapshot(ctx context.Context) ([]byte, error)

	// WriteInventorySnapshot stores the inventory listing for the
	// configured TTL.
	WriteInventorySnapshot(ctx context.Context, payload []byte) error
}
