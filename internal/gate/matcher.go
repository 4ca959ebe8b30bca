package gate

import (
	"regexp"
	"strings"
)

var staticAsset = regexp.MustCompile(`(?i)\.(?:html?|css|js(?:on)?|jpe?g|webp|png|gif|svg|ttf|woff2?|ico|csv|docx?|xlsx?|zip|webmanifest)$`)

// Applies reports whether the gate runs for path. Static files are skipped;
// API and RPC routes are always matched
func Applies(path string) bool {
	if hasPrefixSegment(path, "/api") || hasPrefixSegment(path, "/rpc") {
		return true
	}
	return !staticAsset.MatchString(path)
}

// IsPublic reports whether path bypasses identity and onboarding checks
func IsPublic(path string) bool {
	switch {
	case path == "/" || path == "" || path == "/health":
		return true
	case strings.HasPrefix(path, "/sign-in"), strings.HasPrefix(path, "/sign-up"):
		return true
	case hasPrefixSegment(path, "/api"):
		return true
	}
	return false
}

func hasPrefixSegment(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
