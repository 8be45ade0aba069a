package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/salon-reports-api/internal/dto"
	"github.com/noah-isme/salon-reports-api/internal/models"
	"github.com/noah-isme/salon-reports-api/pkg/response"
)

// CronSecretHeader carries the shared secret of the external scheduler.
const CronSecretHeader = "X-Cron-Secret"

// TriggerAuth guards the scan trigger once a secret is configured. A request then passes
// with the secret in X-Cron-Secret or with a bearer token of a service or platform admin.
func TriggerAuth(secret string, validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		if provided := c.GetHeader(CronSecretHeader); provided != "" {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
				c.Next()
				return
			}
		}
		if validator != nil {
			if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
				claims, err := validator.ValidateToken(token)
				if err == nil && (claims.Role == models.RoleService || claims.Role == models.RolePlatformAdmin) {
					c.Set(ContextUserKey, claims)
					c.Next()
					return
				}
			}
		}
		response.Raw(c, http.StatusUnauthorized, dto.ProcessReportsError{Success: false, Error: "unauthorized"})
		c.Abort()
	}
}
