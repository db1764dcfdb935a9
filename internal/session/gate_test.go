package session

import (
	"errors"
	"testing"
	"time"
)

func setupTestGate(t *testing.T) (*Gate, *time.Time) {
	t.Helper()
	hash, err := HashPassphrase("correct horse")
	if err != nil {
		t.Fatalf("hash passphrase: %v", err)
	}
	gate := NewGate(hash, []byte("test-secret"))
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	gate.Now = func() time.Time { return now }
	gate.Delay = func() {}
	return gate, &now
}

func TestUnlockAndVerify(t *testing.T) {
	gate, _ := setupTestGate(t)

	token, err := gate.Unlock("correct horse")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := gate.Verify(token); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestUnlockWrongPassphrase(t *testing.T) {
	gate, _ := setupTestGate(t)

	if _, err := gate.Unlock("wrong"); !errors.Is(err, ErrBadPassphrase) {
		t.Errorf("err = %v, want ErrBadPassphrase", err)
	}
}

func TestLockoutAfterRepeatedFailures(t *testing.T) {
	gate, now := setupTestGate(t)

	for i := 0; i < 5; i++ {
		if _, err := gate.Unlock("wrong"); !errors.Is(err, ErrBadPassphrase) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	// Even the right passphrase fails while locked.
	if _, err := gate.Unlock("correct horse"); !errors.Is(err, ErrLocked) {
		t.Fatalf("locked gate returned %v", err)
	}

	// After the window the gate opens again.
	*now = now.Add(11 * time.Minute)
	if _, err := gate.Unlock("correct horse"); err != nil {
		t.Errorf("unlock after lockout window: %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	gate, _ := setupTestGate(t)
	token, err := gate.Unlock("correct horse")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	if err := gate.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token: %v", err)
	}
	if err := gate.Verify("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: %v", err)
	}

	other := NewGate(gate.hashString(), []byte("other-secret"))
	other.Now = gate.Now
	if err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("cross-secret token: %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	gate, now := setupTestGate(t)
	token, err := gate.Unlock("correct horse")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	*now = now.Add(13 * time.Hour)
	if err := gate.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired token: %v", err)
	}
}

// hashString exposes the stored hash for building a second gate in tests.
func (g *Gate) hashString() string { return string(g.hash) }
