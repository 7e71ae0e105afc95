package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/skillbridge/platform/internal/core/domain"
	"github.com/skillbridge/platform/internal/core/ports"
)

// AuthService implements login and the refresh exchange on top of the token
// service and principal store.
type AuthService struct {
	repo   ports.PrincipalRepository
	tokens ports.TokenService
}

func NewAuthService(repo ports.PrincipalRepository, tokens ports.TokenService) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Principal, error) {
	if email == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	principal, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if !principal.Active {
		return nil, nil, domain.ErrPrincipalInactive
	}

	pair, err := s.issuePair(principal)
	if err != nil {
		return nil, nil, err
	}
	return pair, principal, nil
}

// Refresh exchanges a valid, non-expired refresh token for a fresh pair. The
// principal is resolved from the store so that roles and the active flag
// reflect current state, not the claims frozen into the old token.
//
// Refresh tokens are stateless: the old token stays usable until its own
// expiry. There is no server-side rotation or denylist.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil || !claims.IsRefresh() {
		return nil, domain.ErrInvalidToken
	}

	principal, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !principal.Active {
		return nil, domain.ErrPrincipalInactive
	}

	return s.issuePair(principal)
}

func (s *AuthService) issuePair(p *domain.Principal) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(p)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(p.ID)
	if err != nil {
		return nil, err
	}

	// Decode our own freshly signed token for its exact expiry instant
	// rather than recomputing now+TTL with a second clock read.
	var expiresAt time.Time
	if claims, err := s.tokens.Validate(access); err == nil {
		expiresAt = claims.ExpiresAt
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
