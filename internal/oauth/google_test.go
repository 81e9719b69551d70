package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newFakeGoogle(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostFormValue("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		if r.PostFormValue("code") != "good-code" {
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":          "sub-123",
			"given_name":  "Grace",
			"family_name": "Hopper",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/auth/google/home",
	})
	c.tokenURL = srv.URL + "/token"
	c.userinfoURL = srv.URL + "/userinfo"
	return srv, c
}

func TestAuthURL(t *testing.T) {
	c := NewClient(Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost/auth/google/home",
	})
	raw := c.AuthURL("state-1")
	if !strings.HasPrefix(raw, googleAuthURL+"?") {
		t.Fatalf("unexpected base: %s", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" || q.Get("state") != "state-1" {
		t.Fatalf("query = %v", q)
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type = %q", q.Get("response_type"))
	}
}

func TestExchangeHappyPath(t *testing.T) {
	_, c := newFakeGoogle(t)

	profile, err := c.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.Sub != "sub-123" || profile.GivenName != "Grace" || profile.FamilyName != "Hopper" {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestExchangeBadCode(t *testing.T) {
	_, c := newFakeGoogle(t)

	if _, err := c.Exchange(context.Background(), "bad-code"); err == nil {
		t.Fatalf("expected error for rejected code")
	}
}

func TestNewStateUnique(t *testing.T) {
	if NewState() == NewState() {
		t.Fatalf("state values must not repeat")
	}
}

func TestEnabled(t *testing.T) {
	if NewClient(Config{}).Enabled() {
		t.Fatalf("empty config must not be enabled")
	}
	if !NewClient(Config{ClientID: "a", ClientSecret: "b"}).Enabled() {
		t.Fatalf("configured client should be enabled")
	}
}
