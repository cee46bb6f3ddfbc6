package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns 32 random bytes hex encoded, used for refresh tokens
// and OAuth state values.
func RandomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
