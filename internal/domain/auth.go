package domain

// RoleAdmin grants access to the moderation API.
const RoleAdmin = "admin"

// TokenClaims is the verified identity carried by an API token.
type TokenClaims struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the claims carry the given role.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenIssuer issues tokens (e.g. JWT) for an operator identity.
type TokenIssuer interface {
	Issue(subject string, roles []string) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}
