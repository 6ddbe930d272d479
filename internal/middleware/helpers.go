// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// MustGetSpaID gets the spa ID from context or panics
func MustGetSpaID(c *gin.Context) int64 {
	spaID, exists := GetSpaID(c)
	if !exists {
		panic("spa_id not found in context")
	}
	return spaID
}

// GetRoles gets user roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get("roles")
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("spa_id")
	return exists
}

// IsReviewer checks if the caller reviews submissions for the association
func IsReviewer(c *gin.Context) bool {
	return HasRole(c, "lsa_admin") || HasRole(c, "super_admin")
}
