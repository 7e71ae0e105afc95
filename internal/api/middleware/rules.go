package middleware

import (
	"strings"

	"github.com/skillbridge/platform/internal/core/domain"
)

// Access is the outcome a matched rule demands.
type Access int

const (
	// AccessPublic always allows, authenticated or not.
	AccessPublic Access = iota
	// AccessAuthenticated requires a valid principal, any role.
	AccessAuthenticated
	// AccessRoles requires a valid principal holding at least one of the
	// rule's roles.
	AccessRoles
)

// Rule maps a path pattern to a required access level. Patterns are exact
// paths, or a base plus "/*" (exactly one extra segment) or "/**" (the base
// and everything below it).
type Rule struct {
	Pattern string
	Access  Access
	Roles   []domain.Role
}

func Public(pattern string) Rule {
	return Rule{Pattern: pattern, Access: AccessPublic}
}

func Authenticated(pattern string) Rule {
	return Rule{Pattern: pattern, Access: AccessAuthenticated}
}

func RequireRoles(pattern string, roles ...domain.Role) Rule {
	return Rule{Pattern: pattern, Access: AccessRoles, Roles: roles}
}

// RuleTable is an explicit ordered rule list with a first-match-wins
// contract: more specific patterns must be declared before broader catch-alls
// covering the same prefix, or they are unreachable. The table is populated
// once at startup and read-only afterwards.
type RuleTable struct {
	rules []Rule
}

func NewRuleTable(rules ...Rule) *RuleTable {
	return &RuleTable{rules: rules}
}

// Match returns the first rule whose pattern matches path. Unmatched paths
// fall through to authenticated-only access.
func (t *RuleTable) Match(path string) Rule {
	for _, r := range t.rules {
		if matchPattern(r.Pattern, path) {
			return r
		}
	}
	return Authenticated(path)
}

func matchPattern(pattern, path string) bool {
	switch {
	case strings.HasSuffix(pattern, "/**"):
		base := strings.TrimSuffix(pattern, "/**")
		return path == base || strings.HasPrefix(path, base+"/")
	case strings.HasSuffix(pattern, "/*"):
		base := strings.TrimSuffix(pattern, "/*")
		if !strings.HasPrefix(path, base+"/") {
			return false
		}
		rest := path[len(base)+1:]
		return rest != "" && !strings.Contains(rest, "/")
	default:
		return pattern == path
	}
}
