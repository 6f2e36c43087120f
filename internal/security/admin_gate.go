// Package security holds the operator gate for cache maintenance.
package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// Request locations the admin token is read from.
const (
	AdminQueryParam  = "admin"
	AdminTokenHeader = "X-Admin-Token"
)

// AdminGate decides whether a caller may trigger cache maintenance.
//
// It compares a presented token with a shared secret. It is a convenience
// switch for operators of a public lookup page, not an authorization
// system: the secret travels in URLs and is never rotated by the service.
type AdminGate struct {
	digest  [sha256.Size]byte
	enabled bool
}

// NewAdminGate returns a gate for secret. An empty secret disables the gate.
func NewAdminGate(secret string) *AdminGate {
	if secret == "" {
		return &AdminGate{}
	}
	return &AdminGate{digest: sha256.Sum256([]byte(secret)), enabled: true}
}

// Enabled reports whether a secret is configured.
func (g *AdminGate) Enabled() bool {
	return g != nil && g.enabled
}

// Allow reports whether token matches the secret. It is always false when
// the gate is disabled, including for an empty token.
func (g *AdminGate) Allow(token string) bool {
	if !g.Enabled() || token == "" {
		return false
	}
	presented := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(presented[:], g.digest[:]) == 1
}

// TokenFromRequest returns the header token, falling back to ?admin=.
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(AdminTokenHeader); token != "" {
		return token
	}
	return r.URL.Query().Get(AdminQueryParam)
}
