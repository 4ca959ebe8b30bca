// Package requestmeta resolves request scheme details behind proxies
package requestmeta

import (
	"net/http"
	"strings"
)

// SchemePolicy controls how the request scheme is resolved
//
// TrustForwardedProto must be explicitly enabled for X-Forwarded-Proto to be
// considered, since clients can set the header themselves
type SchemePolicy struct {
	TrustForwardedProto bool
}

// IsHTTPS reports whether a request arrived over an encrypted transport
func IsHTTPS(r *http.Request, policy SchemePolicy) bool {
	return Scheme(r, policy) == "https"
}

// Scheme returns "https" or "http" for the request
func Scheme(r *http.Request, policy SchemePolicy) string {
	if r == nil {
		return ""
	}
	if policy.TrustForwardedProto {
		if forwarded := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); forwarded == "http" || forwarded == "https" {
			return forwarded
		}
	}
	if r.URL != nil {
		if scheme := strings.ToLower(strings.TrimSpace(r.URL.Scheme)); scheme == "http" || scheme == "https" {
			return scheme
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
