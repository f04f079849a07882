package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulseboard/pulseboard/internal/container"
	handlers "github.com/pulseboard/pulseboard/internal/interface/http"
	"github.com/pulseboard/pulseboard/internal/interface/middleware"
	"github.com/pulseboard/pulseboard/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	resetLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/login/oauth/:provider", loginLimiter, m.Handler.OAuthStart)
	rg.GET("/login/oauth/:provider/callback", loginLimiter, m.Handler.OAuthCallback)
	rg.POST("/password/reset", resetLimiter, m.Handler.PasswordReset)
	rg.POST("/password/reset/confirm", resetConfirmLimiter, m.Handler.PasswordResetConfirm)
	rg.POST("/refresh", loginLimiter, m.Handler.Refresh)

	// Protected endpoints behind the session guard
	auth := rg.Group("/")
	auth.Use(middleware.SessionGuard(container.GetResolver(), m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.Profile)
	}
}
