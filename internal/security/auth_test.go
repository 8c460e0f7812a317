package security

import (
	"net/http/httptest"
	"testing"
)

func TestAuthorize(t *testing.T) {
	a := BearerAuth{Enabled: true, Token: "abc123"}

	req := httptest.NewRequest("GET", "/", nil)
	if a.Authorize(req) {
		t.Fatal("expected false without header")
	}
	req.Header.Set("Authorization", "Bearer abc123")
	if !a.Authorize(req) {
		t.Fatal("expected authorized")
	}
	req.Header.Set("Authorization", "Bearer wrong")
	if a.Authorize(req) {
		t.Fatal("expected unauthorized")
	}
}

func TestAuthorizeSchemeCaseInsensitive(t *testing.T) {
	a := BearerAuth{Enabled: true, Token: "abc123"}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "bearer abc123")
	if !a.Authorize(req) {
		t.Fatal("expected lowercase scheme to authorize")
	}
	req.Header.Set("Authorization", "Basic abc123")
	if a.Authorize(req) {
		t.Fatal("expected non-bearer scheme to be rejected")
	}
	req.Header.Set("Authorization", "Bearer")
	if a.Authorize(req) {
		t.Fatal("expected scheme without token to be rejected")
	}
}

func TestAuthorizeDisabled(t *testing.T) {
	a := BearerAuth{Enabled: false, Token: "x"}
	req := httptest.NewRequest("GET", "/", nil)
	if !a.Authorize(req) {
		t.Fatal("expected auth bypass")
	}
}
