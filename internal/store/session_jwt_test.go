package store

import (
	"testing"
	"time"
)

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)

	token, err := s.NewSession(42)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	userID, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok {
		t.Fatalf("resolve token: ok=%v err=%v", ok, err)
	}
	if userID != 42 {
		t.Fatalf("unexpected user id %d", userID)
	}
}

func TestJWTSessionStoreRejectsWrongSecret(t *testing.T) {
	s := NewJWTSessionStore("secret-a", time.Hour)
	other := NewJWTSessionStore("secret-b", time.Hour)

	token, err := s.NewSession(1)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := other.GetUserIDByToken(token); ok {
		t.Fatalf("token signed with another secret must not validate")
	}
}

func TestJWTSessionStoreRejectsExpired(t *testing.T) {
	s := NewJWTSessionStore("test-secret", -time.Minute)
	token, err := s.NewSession(1)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := s.GetUserIDByToken(token); ok {
		t.Fatalf("expired token must not validate")
	}
}

func TestJWTSessionStoreRejectsGarbage(t *testing.T) {
	s := NewJWTSessionStore("test-secret", time.Hour)
	if _, ok, _ := s.GetUserIDByToken("not.a.jwt"); ok {
		t.Fatalf("garbage token must not validate")
	}
}
