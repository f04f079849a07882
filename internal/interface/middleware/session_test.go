package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/guard"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/pkg/helpers"
)

func guardedEngine(store *session.MemoryStore, jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionGuard(guard.NewResolver(store), jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("userID")})
	})
	return r
}

func testJWT() *helpers.JWTManager {
	return helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestSessionGuardMissingCookieRedirectsToLogin(t *testing.T) {
	r := guardedEngine(session.NewMemoryStore(), testJWT())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("X-Redirect-To"))
}

func TestSessionGuardInvalidTokenRedirectsToLogin(t *testing.T) {
	r := guardedEngine(session.NewMemoryStore(), testJWT())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "garbage"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("X-Redirect-To"))
}

func TestSessionGuardMissingMarkerRedirectsToLogin(t *testing.T) {
	jwt := testJWT()
	r := guardedEngine(session.NewMemoryStore(), jwt)

	token, _, err := jwt.GenerateAccessToken("u1", "stale-session")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("X-Redirect-To"))
}

func TestSessionGuardStoreFailureReturnsUnavailableNotRedirect(t *testing.T) {
	jwt := testJWT()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "s1", session.Record{UserID: "u1"}, time.Hour))
	store.FailReads = errors.New("backend unreachable")
	r := guardedEngine(store, jwt)

	token, _, err := jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("X-Redirect-To"), "an unreadable session must not bounce to login")
}

func TestSessionGuardAuthenticatedPassesIdentity(t *testing.T) {
	jwt := testJWT()
	store := session.NewMemoryStore()
	rec := session.Record{UserID: "u1", Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, store.Set(context.Background(), "s1", rec, time.Hour))
	r := guardedEngine(store, jwt)

	token, _, err := jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)
}
