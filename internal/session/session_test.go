package session

import (
	"testing"
	"time"
)

func TestManager_CreateAndGet(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager().
		WithClock(func() time.Time { return now }).
		WithTokenSource(func() string { return "tok-1" })

	s := m.Create("alice")
	if s.Token != "tok-1" {
		t.Errorf("Expected token tok-1, got %s", s.Token)
	}
	if !s.LoggedIn {
		t.Error("New session should be logged in")
	}
	if !s.CreatedAt.Equal(now) {
		t.Errorf("Expected created at %v, got %v", now, s.CreatedAt)
	}

	got := m.Get("tok-1")
	if got == nil {
		t.Fatal("Expected session for tok-1")
	}
	if got.Username != "alice" {
		t.Errorf("Expected username alice, got %s", got.Username)
	}
}

func TestManager_GetUnknownToken(t *testing.T) {
	m := NewManager()
	if s := m.Get("missing"); s != nil {
		t.Errorf("Expected nil for unknown token, got %+v", s)
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager().WithTokenSource(func() string { return "tok-1" })
	m.Create("alice")

	m.Delete("tok-1")
	if s := m.Get("tok-1"); s != nil {
		t.Error("Expected session to be gone after delete")
	}
	if m.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", m.Count())
	}

	// Deleting again is a no-op.
	m.Delete("tok-1")
}

func TestManager_CopyOnRead(t *testing.T) {
	m := NewManager().WithTokenSource(func() string { return "tok-1" })
	m.Create("alice")

	s := m.Get("tok-1")
	s.Username = "mallory"

	again := m.Get("tok-1")
	if again.Username != "alice" {
		t.Errorf("Manager leaked internal pointer: username = %s", again.Username)
	}
}
