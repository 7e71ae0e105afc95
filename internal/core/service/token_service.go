package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillbridge/platform/internal/core/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Typed validation failures. Callers that only need pass/fail treat any
// non-nil error identically; the gateway logs the cause before collapsing it
// into a uniform 401.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenUnsupported      = errors.New("token algorithm unsupported")
)

// tokenClaims is the wire schema of every signed token. Roles travel as a
// proper JSON list; refresh tokens set Type and omit Email/Roles, access
// tokens do the opposite.
type tokenClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	Type  string   `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens with HMAC-SHA-512 over a
// shared secret. All operations are pure functions of their inputs and the
// clock; the service holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL reports the configured access-token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

func (s *TokenService) IssueAccessToken(p *domain.Principal) (string, error) {
	now := s.now().UTC()
	roles := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = string(r)
	}

	claims := tokenClaims{
		Email: p.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
}

// IssueRefreshToken needs only an identifier, not a full principal: refresh
// tokens carry no role data, forcing the exchange to re-derive roles from
// current principal state.
func (s *TokenService) IssueRefreshToken(principalID string) (string, error) {
	now := s.now().UTC()
	claims := tokenClaims{
		Type: domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
}

// Validate parses and verifies signature and expiry, returning the decoded
// claims on success. Failures map onto the typed sentinels above; there is no
// path that yields claims from a token that did not fully verify.
func (s *TokenService) Validate(token string) (*domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
			return nil, ErrTokenUnsupported
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid || tc.Subject == "" {
		return nil, ErrTokenMalformed
	}

	roles := make([]domain.Role, 0, len(tc.Roles))
	for _, raw := range tc.Roles {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return nil, ErrTokenMalformed
		}
		roles = append(roles, role)
	}

	var issued time.Time
	if tc.IssuedAt != nil {
		issued = tc.IssuedAt.Time
	}

	return &domain.Claims{
		Subject:   tc.Subject,
		Email:     tc.Email,
		Roles:     roles,
		TokenType: tc.Type,
		IssuedAt:  issued,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// IsRefreshToken reports whether the token fully verifies and carries the
// refresh type claim. An access token returns false because it lacks the
// claim; garbage returns false because it fails validation.
func (s *TokenService) IsRefreshToken(token string) bool {
	claims, err := s.Validate(token)
	return err == nil && claims.IsRefresh()
}

// classifyParseError collapses golang-jwt's joined validation errors into one
// typed sentinel. Signature checks win over expiry so that a tampered token
// is never reported as merely expired.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		return ErrTokenUnsupported
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
