package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/mvc"
	"github.com/aklujeats/aklujeats/internal/session"
)

// Authorize enforces the policy of the endpoint resolved by the routing
// middleware. Unauthenticated API callers get a 401 envelope; browsers are
// sent to loginPath with a ReturnUrl.
func Authorize(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ep, ok := mvc.EndpointFrom(c)
		if !ok || ep.Policy == mvc.PolicyAnonymous {
			c.Next()
			return
		}

		if ep.Policy != mvc.PolicyRequireAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, models.APIResponse{
				Success: false,
				Error:   "unknown authorization policy",
			})
			return
		}

		if session.Default(c).Get(session.KeyAdminID) != "" {
			c.Next()
			return
		}

		if ep.Kind == mvc.KindAPI {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Error:   "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, loginPath+"?ReturnUrl="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}
