package ports

import (
	"context"

	"github.com/skillbridge/platform/internal/core/domain"
)

// PrincipalRepository is the read side of principal persistence consumed by
// this core. Registration and profile management live elsewhere.
type PrincipalRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	FindByEmail(ctx context.Context, email string) (*domain.Principal, error)
}
