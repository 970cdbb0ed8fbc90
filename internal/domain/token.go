package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const tokenBytes = 32

// TokenCodec mints the opaque bearer token embedded in signed stream URLs.
// The token has no structure: it is not a MAC over the asset or the expiry
// and there is no decode operation. Its only job is to make the URL
// unguessable.
type TokenCodec struct {
	random io.Reader
}

func NewTokenCodec() *TokenCodec {
	return &TokenCodec{random: rand.Reader}
}

// GenerateToken returns 32 random bytes, hex encoded (64 chars).
func (c *TokenCodec) GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(c.random, buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
