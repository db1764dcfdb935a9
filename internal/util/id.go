package util

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// NewID returns a fresh record identifier, optionally prefixed for
// readability in stored payloads.
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

const nonceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Nonce returns a short random token used in publish identifiers.
func Nonce(length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(nonceAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = nonceAlphabet[0]
			continue
		}
		out[i] = nonceAlphabet[n.Int64()]
	}
	return string(out)
}
