package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/logger"
	"accountsvc/internal/models"
	"accountsvc/internal/services"
)

// RequireRoles aborts the request unless the resolved principal holds at
// least one of the given roles. A denial by an authenticated caller is
// recorded as an ACCESS_DENIED security event.
func RequireRoles(audit services.AuditServicer, roles ...models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		for _, role := range roles {
			if principal.HasRole(role) {
				c.Next()
				return
			}
		}

		path := c.Request.URL.Path
		if !principal.IsAnonymous() {
			if err := audit.Record(nil, models.ActionAccessDenied, principal.Email, path, path); err != nil {
				logger.Get().Errorw("failed to record access denial",
					"error", err,
					"subject", principal.Email,
					"path", path,
				)
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    apperrors.ErrAccessDenied.Code,
				"message": apperrors.ErrAccessDenied.Message,
			},
		})
		c.Abort()
	}
}
