package issuer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hrmskit/sessiond/internal/credstore"
)

// AccessTokenClaims are embedded in the minted access token. The payload
// mirrors the claim shapes the client-side codec recognizes: a single role
// plus a roles list, alongside optional profile fields.
type AccessTokenClaims struct {
	Role          string   `json:"role"`
	Roles         []string `json:"roles"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Status        string   `json:"status"`
	EmailVerified bool     `json:"emailVerified"`
	LastLogin     string   `json:"lastLogin"`
	jwt.RegisteredClaims
}

// MintAccessToken creates a signed HS256 access token for the given account.
func MintAccessToken(clock Clock, record credstore.UserRecord, tokenIssuer string, signingKey []byte, ttl time.Duration) (string, time.Time, error) {
	if record.ID == "" {
		return "", time.Time{}, fmt.Errorf("jwt.mint.failure: subject must be non-empty")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	issuedAt := clock.Now().UTC()
	expiresAt := issuedAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		Role:          string(record.Role),
		Roles:         []string{string(record.Role)},
		Username:      record.Name,
		Email:         record.Email,
		Status:        "active",
		EmailVerified: true,
		LastLogin:     issuedAt.Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   record.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt.Add(-30 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, signErr := token.SignedString(signingKey)
	return signed, expiresAt, signErr
}
