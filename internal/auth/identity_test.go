package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdentity(t *testing.T) (*JWTIdentity, string) {
	t.Helper()
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.Issue("user-1")
	require.NoError(t, err)
	return NewJWTIdentity(issuer, "/sign-in"), token
}

func TestAuthenticateFromHeaderAndCookie(t *testing.T) {
	identity, token := newIdentity(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	userID, err := identity.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	userID, err = identity.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = identity.Authenticate(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestChallengeRedirectsPages(t *testing.T) {
	identity, _ := newIdentity(t)
	router := gin.New()
	router.GET("/dashboard/reports", identity.Challenge)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/reports?tab=1", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/sign-in?redirect_url=%2Fdashboard%2Freports%3Ftab%3D1", rr.Header().Get("Location"))
}

func TestChallengeRejectsAPI(t *testing.T) {
	identity, _ := newIdentity(t)
	router := gin.New()
	router.GET("/api/teams", identity.Challenge)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/teams", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthenticated"}`, rr.Body.String())
}

func TestRequireUser(t *testing.T) {
	identity, token := newIdentity(t)
	router := gin.New()
	router.GET("/api/me", RequireUser(identity), func(c *gin.Context) {
		userID, _ := UserID(c)
		c.String(http.StatusOK, userID)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", rr.Body.String())
}
