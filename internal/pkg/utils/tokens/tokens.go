package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/signoffhq/signoff/internal/pkg/utils"
)

// dummyHMAC is compared against on lookup misses so hits and misses cost the same.
var dummyHMAC = strings.Repeat("0", sha256.Size*2)

// ParseToken strips prefix and checks the secret part is well formed.
func ParseToken(raw, prefix string) (string, bool) {
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	secret := strings.TrimPrefix(raw, prefix)
	if len(secret) != utils.KeyLength || !utils.IsBase62(secret) {
		return "", false
	}
	return secret, true
}

// HMAC256Hex returns hex(HMAC-SHA256(pepper, secret)).
func HMAC256Hex(pepper, secret string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal compares two hex digests in constant time.
func Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// BurnCompare performs a throwaway constant-time comparison.
func BurnCompare(digest string) {
	_ = Equal(digest, dummyHMAC)
}
