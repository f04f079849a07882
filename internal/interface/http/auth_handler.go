package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/pulseboard/config"
	"github.com/pulseboard/pulseboard/internal/authflow"
	repo "github.com/pulseboard/pulseboard/internal/domain/repository"
	"github.com/pulseboard/pulseboard/internal/identity"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/pkg/helpers"
	"github.com/pulseboard/pulseboard/pkg/response"
	"github.com/pulseboard/pulseboard/pkg/validation"
)

const keyOAuthState = "oauth:state:"

// AuthHandler adapts the auth flow controller to HTTP. Each request builds a
// fresh controller, feeds it the payload, and renders the resulting form
// snapshot; on success it mints the cookie pair bound to the session marker.
type AuthHandler struct {
	Provider *identity.LocalProvider
	Store    session.Store
	OAuth    *identity.OAuthManager
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Cookies  *helpers.Manager
	RDB      *redis.Client
	Logger   *logrus.Logger
	Cfg      *config.Config
}

func NewAuthHandler(provider *identity.LocalProvider, store session.Store, oauth *identity.OAuthManager, users repo.UserRepository, jwt *helpers.JWTManager, cookies *helpers.Manager, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Provider: provider,
		Store:    store,
		OAuth:    oauth,
		Repo:     users,
		JWT:      jwt,
		Cookies:  cookies,
		RDB:      rdb,
		Logger:   logger,
		Cfg:      cfg,
	}
}

func (h *AuthHandler) newFlow() *authflow.Controller {
	return authflow.New(h.Provider, h.Store, h.Cfg.SessionTTL, h.Logger)
}

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResult struct {
	Form       authflow.Form  `json:"form"`
	User       *identity.User `json:"user,omitempty"`
	RedirectTo string         `json:"redirect_to,omitempty"`
}

// Login POST /api/login {email, password}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	flow := h.newFlow()
	flow.SetEmail(req.Email)
	flow.SetPassword(req.Password)

	if flow.Submit(c.Request.Context()) != authflow.OutcomeDashboard {
		response.Error[any](c, http.StatusUnauthorized, "sign in failed", loginResult{Form: flow.Form()})
		return
	}
	h.issueCookies(c, flow.User().ID, flow.SessionKey())
	response.Success(c, http.StatusOK, loginResult{
		Form:       flow.Form(),
		User:       flow.User(),
		RedirectTo: "/dashboard",
	}, "signed in", nil)
}

// OAuthStart POST /api/login/oauth/:provider
// Issues the authorization URL with a one-shot state token.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	provider := c.Param("provider")
	state, err := helpers.GenToken(24)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	authURL, err := h.OAuth.AuthCodeURL(provider, state)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, identity.Message(err), nil)
		return
	}
	if err := h.RDB.Set(c, keyOAuthState+state, provider, 10*time.Minute).Err(); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "could not persist state", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"auth_url": authURL}, "authorization url", nil)
}

// OAuthCallback GET /api/login/oauth/:provider/callback?code=...&state=...
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.Error[any](c, http.StatusBadRequest, "missing code or state", nil)
		return
	}
	want, err := h.RDB.Get(c, keyOAuthState+state).Result()
	if err != nil || want != provider {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired state", nil)
		return
	}
	h.RDB.Del(c, keyOAuthState+state)

	flow := h.newFlow()
	if flow.SubmitOAuth(c.Request.Context(), provider, code) != authflow.OutcomeDashboard {
		response.Error[any](c, http.StatusUnauthorized, "sign in failed", loginResult{Form: flow.Form()})
		return
	}
	h.issueCookies(c, flow.User().ID, flow.SessionKey())
	response.Success(c, http.StatusOK, loginResult{
		Form:       flow.Form(),
		User:       flow.User(),
		RedirectTo: "/dashboard",
	}, "signed in", nil)
}

// PasswordReset POST /api/password/reset {email}
// The email field is deliberately not validated server-side beyond the flow's
// own empty check, so the flow produces the user-facing message itself.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	flow := h.newFlow()
	flow.ToggleReset()
	flow.SetEmail(req.Email)
	flow.RequestReset(c.Request.Context())

	form := flow.Form()
	if form.Error != "" {
		response.Error[any](c, http.StatusBadRequest, form.Error, loginResult{Form: form})
		return
	}
	response.Success(c, http.StatusOK, loginResult{Form: form}, form.Success, nil)
}

// PasswordResetConfirm POST /api/password/reset/confirm {token, new_password}
func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid, err := h.Provider.ConsumeResetToken(c.Request.Context(), req.Token)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	hash, err := helpers.HashPassword(req.NewPassword)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "hash fail", nil)
		return
	}
	if err := h.Repo.UpdatePassword(c.Request.Context(), uid, hash); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "update fail", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// Refresh POST /api/refresh
// Rotates the cookie pair when the refresh token and its session marker are
// still valid.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie("refresh_token")
	if err != nil || token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	claims, err := h.JWT.ParseRefreshToken(token)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	_, ok, err := h.Store.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "session state unknown", nil)
		return
	}
	if !ok {
		h.Cookies.Clear(c)
		response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
		return
	}
	h.issueCookies(c, claims.UserID, claims.SessionID)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "tokens rotated", nil)
}

// Logout POST /api/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid := c.GetString("sessionID"); sid != "" {
		if err := h.Store.Remove(c.Request.Context(), sid); err != nil && h.Logger != nil {
			h.Logger.WithError(err).Warn("session marker removal failed")
		}
	}
	_ = h.Provider.SignOut(c.Request.Context())
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"signed_out": true}, "signed out", nil)
}

// Profile GET /api/profile (auth required)
func (h *AuthHandler) Profile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Repo.GetByID(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"provider": u.Provider,
	}, "profile", nil)
}

func (h *AuthHandler) issueCookies(c *gin.Context, userID, sessionID string) {
	access, aexp, err := h.JWT.GenerateAccessToken(userID, sessionID)
	if err != nil {
		h.Logger.WithError(err).Error("access token generation failed")
		return
	}
	refresh, rexp, err := h.JWT.GenerateRefreshToken(userID, sessionID)
	if err != nil {
		h.Logger.WithError(err).Error("refresh token generation failed")
		return
	}
	h.Cookies.SetPair(c, access, aexp, refresh, rexp)
}
