package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseboard/pulseboard/internal/guard"
	"github.com/pulseboard/pulseboard/pkg/helpers"
	"github.com/pulseboard/pulseboard/pkg/response"
)

// SessionGuard protects a route group: it reads the access-token cookie,
// validates it, and resolves the session marker through the guard.
//
// The three-valued guard state maps onto HTTP as follows: anonymous aborts
// with 401 and a login redirect hint; unknown (marker not readable yet)
// aborts with 503 so the client shows its loading placeholder instead of
// bouncing to login; authenticated requests continue with the user identity
// set in the context.
func SessionGuard(resolver *guard.Resolver, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			abortToLogin(c, "missing access token")
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			abortToLogin(c, "invalid access token")
			return
		}

		state, rec := resolver.Resolve(c.Request.Context(), claims.SessionID)
		switch guard.Decide(state) {
		case guard.DecisionRender:
			c.Set("sessionID", claims.SessionID)
			c.Set("userID", rec.UserID)
			c.Set("userName", rec.Name)
			c.Set("userEmail", rec.Email)
			c.Next()
		case guard.DecisionLoading:
			c.Header("Retry-After", "1")
			response.AbortError(c, http.StatusServiceUnavailable, "session state unknown", nil)
		default:
			abortToLogin(c, "session not found")
		}
	}
}

func abortToLogin(c *gin.Context, message string) {
	c.Header("X-Redirect-To", "/login")
	response.AbortError(c, http.StatusUnauthorized, message, nil)
}
