// Package security guards the local HTTP surface with an optional bearer
// token compared in constant time.
package security

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

type BearerAuth struct {
	Enabled bool
	Token   string
}

func (a BearerAuth) Authorize(r *http.Request) bool {
	if !a.Enabled {
		return true
	}
	// The auth scheme is case-insensitive (RFC 7235); the token is not.
	scheme, candidate, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	candidate = strings.TrimSpace(candidate)
	if len(candidate) != len(a.Token) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.Token)) == 1
}
