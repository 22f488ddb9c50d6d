package port

import (
	"context"

	"github.com/rl1809/borrowhub/internal/core/domain"
)

// Identity resolves the authenticated user from the credential the
// external identity service issued. Authentication itself happens
// elsewhere; this core only consumes the result.
type Identity interface {
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}
