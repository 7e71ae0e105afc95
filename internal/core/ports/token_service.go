package ports

import (
	"github.com/skillbridge/platform/internal/core/domain"
)

// TokenService issues and validates signed bearer tokens. Implementations are
// pure functions over their inputs, the signing secret, and a clock: safe for
// unbounded parallelism, no shared mutable state.
type TokenService interface {
	// IssueAccessToken signs a short-lived token embedding the principal's
	// id, email, and role set.
	IssueAccessToken(p *domain.Principal) (string, error)

	// IssueRefreshToken signs a long-lived token carrying only the principal
	// id and the refresh type marker. Roles are deliberately omitted: a
	// refresh exchange must re-derive them from current principal state.
	IssueRefreshToken(principalID string) (string, error)

	// Validate parses and verifies signature and expiry. On success it
	// returns the decoded claims; on failure one of the service's typed
	// sentinel errors (malformed, bad signature, expired, unsupported).
	// Callers that only need pass/fail check err == nil.
	Validate(token string) (*domain.Claims, error)

	// IsRefreshToken reports whether the token parses, verifies, and carries
	// the refresh type claim. False for access tokens and for garbage.
	IsRefreshToken(token string) bool
}
