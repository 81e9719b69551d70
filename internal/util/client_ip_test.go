package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIPIgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	if got := ClientIP(r, nil); got != "203.0.113.9" {
		t.Fatalf("expected direct peer IP, got %q", got)
	}
}

func TestClientIPHonorsForwardedForFromTrustedProxy(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("parse trusted proxies: %v", err)
	}
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:4321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.2.3")

	if got := ClientIP(r, trusted); got != "198.51.100.1" {
		t.Fatalf("expected forwarded client IP, got %q", got)
	}
}

func TestNewTrustedProxiesRejectsGarbage(t *testing.T) {
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatalf("expected parse error")
	}
	trusted, err := NewTrustedProxies([]string{" ", ""})
	if err != nil {
		t.Fatalf("blank entries should be skipped: %v", err)
	}
	if trusted != nil {
		t.Fatalf("expected nil allowlist for empty input")
	}
}
