package domain

import "time"

// Role is a coarse platform-level role. A principal may hold several at once;
// path authorization checks role-set intersection, so ADMIN is not implied by
// or implying any other role.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
)

// ParseRole maps a wire-level role string to a Role. Unknown values are
// rejected rather than passed through so a tampered or legacy claim can never
// satisfy a role rule by string equality.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleClient, RoleFreelancer:
		return Role(s), true
	}
	return "", false
}

// Principal models the authenticated actor behind a request. It is rebuilt
// per request from token claims (or from the store during a refresh exchange)
// and never mutated in place.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	Active       bool      `json:"active"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAnyRole reports whether the principal holds at least one of the given
// roles. An empty required set is never satisfied.
func (p *Principal) HasAnyRole(required ...Role) bool {
	for _, want := range required {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
