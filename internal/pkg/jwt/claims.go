// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims issued by the association's identity
// service. SpaID identifies the subscribing spa the session acts for.
type Claims struct {
	SpaID int64    `json:"spa_id"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims contain a specific role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsLSAAdmin checks if the session belongs to an association administrator
func (c *Claims) IsLSAAdmin() bool {
	return c.HasRole("lsa_admin") || c.HasRole("super_admin")
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(expected string) bool {
	for _, aud := range c.Audience {
		if aud == expected {
			return true
		}
	}
	return false
}
