// Package session gates the editing surface behind a single passphrase.
// There are no accounts; whoever holds the passphrase is the editor.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"folio/internal/util"
)

const (
	tokenTTL       = 12 * time.Hour
	maxFailures    = 5
	lockoutWindow  = 10 * time.Minute
	editorSubject  = "editor"
	minUnlockDelay = 200 * time.Millisecond
	maxUnlockDelay = 600 * time.Millisecond
)

var (
	ErrBadPassphrase = errors.New("wrong passphrase")
	ErrLocked        = errors.New("too many failures, try again later")
)

// Gate verifies the editor passphrase and issues session tokens. Every
// unlock attempt pays a small random delay so response timing reveals
// nothing, and repeated failures lock the gate for a while.
type Gate struct {
	hash   []byte
	secret []byte

	// TTL bounds how long an issued token stays valid.
	TTL time.Duration

	// Injectable for tests.
	Now   func() time.Time
	Delay func()

	mu          sync.Mutex
	failures    int
	lockedUntil time.Time
}

// HashPassphrase prepares a passphrase for storage in configuration.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}
	return string(hash), nil
}

// NewGate builds a gate over a bcrypt passphrase hash and a token secret.
func NewGate(passphraseHash string, secret []byte) *Gate {
	return &Gate{
		hash:   []byte(passphraseHash),
		secret: secret,
		TTL:    tokenTTL,
		Now:    time.Now,
		Delay: func() {
			jitter := time.Duration(rand.Int63n(int64(maxUnlockDelay - minUnlockDelay)))
			time.Sleep(minUnlockDelay + jitter)
		},
	}
}

// Unlock checks the passphrase and returns a session token. While the gate
// is locked every attempt fails regardless of the passphrase.
func (g *Gate) Unlock(passphrase string) (string, error) {
	g.Delay()

	g.mu.Lock()
	now := g.Now()
	if now.Before(g.lockedUntil) {
		g.mu.Unlock()
		return "", ErrLocked
	}

	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(passphrase)); err != nil {
		g.failures++
		if g.failures >= maxFailures {
			g.lockedUntil = now.Add(lockoutWindow)
			g.failures = 0
		}
		g.mu.Unlock()
		return "", ErrBadPassphrase
	}
	g.failures = 0
	g.mu.Unlock()

	return IssueToken(g.secret, Claims{
		Sub: editorSubject,
		JTI: util.NewID(""),
		Exp: now.Add(g.TTL).Unix(),
	})
}

// Verify checks a session token and reports why it is unusable, if it is.
func (g *Gate) Verify(token string) error {
	claims, err := ParseToken(g.secret, token, g.Now())
	if err != nil {
		return err
	}
	if claims.Sub != editorSubject {
		return ErrInvalidToken
	}
	return nil
}
