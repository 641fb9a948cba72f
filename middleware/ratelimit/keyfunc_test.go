package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc_PrefersQueryParam(t *testing.T) {
	fn := DefaultKeyFunc("org_id", "X-Org-ID")

	r := httptest.NewRequest(http.MethodGet, "http://example/search/employees?org_id=%20org1%20", nil)
	r.Header.Set("X-Org-ID", "org2")

	if got := fn(r); got != "org1" {
		t.Fatalf("expected query key, got %q", got)
	}
}

func TestDefaultKeyFunc_FallsBackToHeader(t *testing.T) {
	fn := DefaultKeyFunc("org_id", "X-Org-ID")

	r := httptest.NewRequest(http.MethodGet, "http://example/search/employees", nil)
	r.Header.Set("X-Org-ID", " org2 ")

	if got := fn(r); got != "org2" {
		t.Fatalf("expected header key, got %q", got)
	}
}

func TestDefaultKeyFunc_EmptyWhenMissing(t *testing.T) {
	fn := DefaultKeyFunc("org_id", "")

	r := httptest.NewRequest(http.MethodGet, "http://example/search/employees", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	// o IP do cliente não é um tenant
	if got := fn(r); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}
