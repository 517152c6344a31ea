package checkout

import (
	"crypto/rand"
	"encoding/base64"
)

const tokenKeyPrefix = "checkout_token:"

func tokenKey(sessionID string) string {
	return tokenKeyPrefix + sessionID
}

// NewToken returns an opaque single-use checkout token.
func NewToken() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
