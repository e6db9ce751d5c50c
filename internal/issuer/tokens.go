package issuer

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const refreshOpaqueByteLength = 32

// newRefreshOpaque mints an opaque refresh token. The mock issuer keeps no
// record of issued tokens, so the value is only a handle for logout.
func newRefreshOpaque() (string, error) {
	randomBytes := make([]byte, refreshOpaqueByteLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("issuer.refresh_opaque.random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
