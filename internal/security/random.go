package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewRandomString returns a URL-safe random string with n bytes of entropy.
func NewRandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewNonce returns an opaque single-use handle for a pending MFA login.
func NewNonce() string {
	return uuid.NewString()
}

// NewRecoveryCode returns a break-glass recovery code in grouped form,
// e.g. "4f9a-1c22-7be0-934d".
func NewRecoveryCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	groups := make([]string, 0, 4)
	for i := 0; i < len(buf); i += 2 {
		groups = append(groups, fmt.Sprintf("%02x%02x", buf[i], buf[i+1]))
	}
	return strings.Join(groups, "-"), nil
}
