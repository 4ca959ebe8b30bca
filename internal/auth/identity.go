package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"perfsuite/dashboard/dashboard-backend/pkg/response"
)

// SessionCookieName carries the identity token for page requests
const SessionCookieName = "session"

const userIDKey = "auth.user_id"

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity authenticates requests and challenges anonymous ones
type Identity interface {
	Authenticate(r *http.Request) (string, error)
	Challenge(c *gin.Context)
}

// JWTIdentity reads identity tokens from the Authorization header or the session cookie
type JWTIdentity struct {
	tokens     *TokenIssuer
	signInPath string
}

// NewJWTIdentity creates a token-backed identity
func NewJWTIdentity(tokens *TokenIssuer, signInPath string) *JWTIdentity {
	return &JWTIdentity{tokens: tokens, signInPath: signInPath}
}

// Authenticate returns the user id carried by the request
func (i *JWTIdentity) Authenticate(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			token = strings.TrimSpace(cookie.Value)
		}
	}
	if token == "" {
		return "", ErrUnauthenticated
	}
	return i.tokens.Parse(token)
}

// Challenge sends API callers a 401 and page visitors to the sign-in page
func (i *JWTIdentity) Challenge(c *gin.Context) {
	path := c.Request.URL.Path
	if isAPIPath(path) {
		response.Abort(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	target := i.signInPath + "?redirect_url=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusTemporaryRedirect, target)
	c.Abort()
}

// SetUserID stores the authenticated user on the request context
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// UserID returns the authenticated user, if any
func UserID(c *gin.Context) (string, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}

// RequireUser rejects API requests without an identity
func RequireUser(identity Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); ok {
			c.Next()
			return
		}
		userID, err := identity.Authenticate(c.Request)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "unauthenticated")
			return
		}
		SetUserID(c, userID)
		c.Next()
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
