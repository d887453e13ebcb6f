package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisync/backend/internal/domain/identity"
	"github.com/medisync/backend/internal/interfaces/http/dto"
)

// RequireRoles aborts with 403 unless the authenticated operator holds one
// of the given roles. Must run after JWT authentication.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if _, ok := allowed[identity.Role(claims.Role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Role not permitted for this operation"))
			return
		}
		c.Next()
	}
}

// RequireInventoryManagement guards receiving and stock-adjustment routes.
func RequireInventoryManagement() gin.HandlerFunc {
	return RequireRoles(identity.RoleInventoryManager, identity.RoleAdmin)
}
