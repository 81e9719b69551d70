package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Hour)

	token, err := s.NewSession(42)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	userID, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok {
		t.Fatalf("resolve token: ok=%v err=%v", ok, err)
	}
	if userID != 42 {
		t.Fatalf("unexpected user id %d", userID)
	}

	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := s.GetUserIDByToken(token); err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionStoreExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Minute)

	token, err := s.NewSession(7)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, err := s.GetUserIDByToken(token); err != nil || ok {
		t.Fatalf("expected expiry, ok=%v err=%v", ok, err)
	}
}

func TestRedisSessionStoreUnknownToken(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisSessionStore(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Hour)
	if _, ok, err := s.GetUserIDByToken("never-issued"); err != nil || ok {
		t.Fatalf("expected miss for unknown token, ok=%v err=%v", ok, err)
	}
}
