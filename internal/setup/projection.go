package setup

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// CookieName is the cookie holding the projection for the route gate
	CookieName = "setup-state"
	// StorageKey is the local storage key holding the same projection
	StorageKey = "setup-state"
	// CookieLifetime is how long a written projection cookie lives
	CookieLifetime = 7 * 24 * time.Hour
)

// Projection is the lossy snapshot of setup state written by the client and
// read by the route gate. Readers must derive completeness themselves
type Projection struct {
	OrganizationName string `json:"organizationName"`
	HasActivities    bool   `json:"hasActivities"`
	HasTeams         bool   `json:"hasTeams"`
	HasPerformers    bool   `json:"hasPerformers"`
}

// Facts maps the projection onto the completeness facts. HasPerformers does
// not take part in completeness
func (p Projection) Facts() Facts {
	return Facts{
		HasOrganization: HasOrganizationName(p.OrganizationName),
		HasActivities:   p.HasActivities,
		HasTeams:        p.HasTeams,
	}
}

// Complete reports whether the projection describes a finished onboarding
func (p Projection) Complete() bool {
	return p.Facts().Complete()
}

// Marshal encodes the projection as the JSON stored in local storage
func (p Projection) Marshal() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EncodeCookieValue returns the URL-encoded JSON stored in the cookie
func EncodeCookieValue(p Projection) (string, error) {
	data, err := p.Marshal()
	if err != nil {
		return "", err
	}
	return url.QueryEscape(data), nil
}

// DecodeCookieValue parses a cookie value. Anything that does not decode is
// treated as an empty projection
func DecodeCookieValue(raw string) Projection {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Projection{}
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	var p Projection
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return Projection{}
	}
	return p
}

// ReadCookie returns the projection carried by the request, or an empty one
func ReadCookie(r *http.Request) Projection {
	if r == nil {
		return Projection{}
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return Projection{}
	}
	return DecodeCookieValue(cookie.Value)
}

// NewCookie builds the projection cookie written at now
func NewCookie(p Projection, secure bool, now time.Time) (*http.Cookie, error) {
	value, err := EncodeCookieValue(p)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(CookieLifetime),
		MaxAge:   int(CookieLifetime / time.Second),
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}, nil
}
