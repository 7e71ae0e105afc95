package ports

import (
	"context"

	"github.com/skillbridge/platform/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Principal, error)

	// Refresh exchanges a valid refresh token for a fresh access+refresh
	// pair. Roles and the active flag are resolved from the store at exchange
	// time, never taken from the old token's claims.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}
