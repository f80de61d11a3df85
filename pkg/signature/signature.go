package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const HeaderName = "X-Signature"

var (
	ErrorMissingSignature = errors.New("missing signature")
	ErrorInvalidSignature = errors.New("invalid signature")
	ErrorMissingSecret    = errors.New("missing secret")
)

// Sign returns the lowercase hex HMAC-SHA256 of body keyed by secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(secret string, body []byte, signature string) error {
	if secret == "" {
		return ErrorMissingSecret
	}
	if signature == "" {
		return ErrorMissingSignature
	}

	expected := Sign(secret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrorInvalidSignature
	}
	return nil
}
