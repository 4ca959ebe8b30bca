package setup

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieValueRoundTrip(t *testing.T) {
	p := Projection{OrganizationName: "Acme & Sons; \"Ltd\"", HasActivities: true, HasTeams: true}

	value, err := EncodeCookieValue(p)
	require.NoError(t, err)

	assert.Equal(t, p, DecodeCookieValue(value))
}

func TestDecodeCookieValueMalformed(t *testing.T) {
	for _, raw := range []string{"", "{not json", "%zz", "null-ish", "[1,2]"} {
		assert.Equal(t, Projection{}, DecodeCookieValue(raw), raw)
	}
}

func TestDecodeCookieValueAcceptsUnencodedJSON(t *testing.T) {
	p := DecodeCookieValue(`{"organizationName":"Acme","hasActivities":true,"hasTeams":true}`)
	assert.True(t, p.Complete())
}

func TestProjectionCompletenessIgnoresPerformers(t *testing.T) {
	assert.False(t, Projection{OrganizationName: "Acme", HasActivities: true, HasPerformers: true}.Complete())
	assert.True(t, Projection{OrganizationName: "Acme", HasActivities: true, HasTeams: true}.Complete())
	assert.False(t, Projection{OrganizationName: "  ", HasActivities: true, HasTeams: true}.Complete())
}

func TestNewCookieAttributes(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	cookie, err := NewCookie(Projection{OrganizationName: "Acme"}, true, now)
	require.NoError(t, err)

	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.True(t, cookie.Secure)
	assert.Equal(t, now.Add(7*24*time.Hour), cookie.Expires)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	insecure, err := NewCookie(Projection{}, false, now)
	require.NoError(t, err)
	assert.False(t, insecure.Secure)
}

func TestReadCookieFromRequest(t *testing.T) {
	want := Projection{OrganizationName: "Acme", HasActivities: true, HasTeams: true, HasPerformers: true}
	cookie, err := NewCookie(want, false, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)

	assert.Equal(t, want, ReadCookie(req))
	assert.Equal(t, Projection{}, ReadCookie(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, Projection{}, ReadCookie(nil))
}
