// Package token generates opaque URL-safe bearer tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
)

const rawLen = 32

// New returns a 32-byte random token in unpadded base64url form.
func New() (string, error) {
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
