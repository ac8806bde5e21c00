package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-admin/internal/models"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
	"github.com/noah-isme/course-admin/pkg/response"
)

// RequireRoles rejects requests whose token role is not in roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
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
