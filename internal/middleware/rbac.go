package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/response"
)

// RequireRoles lets the request through when the caller holds one of the roles.
// SUPERADMIN is always allowed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	allowed[models.RoleSuperAdmin] = struct{}{}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireStudentAccess guards routes carrying a :studentId parameter so parents and
// students only reach the students listed in their token.
func RequireStudentAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		claims, _ := value.(*models.JWTClaims)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.CanViewStudent(c.Param("studentId")) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student not accessible"))
			c.Abort()
			return
		}
		c.Next()
	}
}
