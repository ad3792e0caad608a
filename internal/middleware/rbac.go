package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"github.com/shikshaprep/mocktest-backend/internal/response"
)

// RequireAdmin checks that the JWT belongs to an admin account.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if claims.Role != model.RoleAdmin {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Next()
	}
}
