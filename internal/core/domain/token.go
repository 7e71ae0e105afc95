package domain

import "time"

// TokenTypeRefresh is the value of the "type" claim carried by refresh
// tokens. Access tokens carry no "type" claim at all; the absence is what
// IsRefreshToken keys on.
const TokenTypeRefresh = "refresh"

// Claims is the decoded, verified payload of a signed token. It is only ever
// produced by a successful validation; there is no way to obtain Claims from
// a token whose signature or expiry failed.
type Claims struct {
	Subject   string
	Email     string
	Roles     []Role
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsRefresh reports whether the claims describe a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.TokenType == TokenTypeRefresh
}

// TokenPair is the credential set handed to a client at login and on every
// refresh exchange.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
