// Package tokenclaims decodes the payload segment of an access token into
// identity claims without verifying the token signature.
//
// The decode here is intentionally unsafe: it exists so a client that already
// obtained a token from its own login call can populate presentation state
// (display name, role-dependent navigation). It must never be used as an
// authorization boundary in front of a real backend resource.
package tokenclaims

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors exposed by Decode.
var (
	ErrEmptyToken      = errors.New("token_claims.empty_token")
	ErrSegmentCount    = errors.New("token_claims.segment_count")
	ErrPayloadEncoding = errors.New("token_claims.payload_encoding")
	ErrPayloadJSON     = errors.New("token_claims.payload_json")
)

// Claims is the decoded middle segment of an access token. Only a subset of
// fields is required; unknown fields are ignored.
type Claims struct {
	Role          string   `json:"role"`
	UserRole      string   `json:"userRole"`
	Roles         []string `json:"roles"`
	Username      string   `json:"username"`
	Name          string   `json:"name"`
	Subject       string   `json:"sub"`
	Email         string   `json:"email"`
	Status        string   `json:"status"`
	EmailVerified bool     `json:"emailVerified"`
	LastLogin     string   `json:"lastLogin"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

// Decode splits the token on ".", base64url-decodes the middle segment, and
// JSON-parses it. Every failure mode is reported as an error; Decode never
// panics. It performs no signature verification.
func Decode(tokenText string) (*Claims, error) {
	if strings.TrimSpace(tokenText) == "" {
		return nil, fmt.Errorf("token_claims.decode: %w", ErrEmptyToken)
	}
	segments := strings.Split(tokenText, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("token_claims.decode: %w", ErrSegmentCount)
	}
	payloadBytes, decodeErr := decodeBase64URLSegment(segments[1])
	if decodeErr != nil {
		return nil, fmt.Errorf("token_claims.decode: %w", ErrPayloadEncoding)
	}
	claims := &Claims{}
	if unmarshalErr := json.Unmarshal(payloadBytes, claims); unmarshalErr != nil {
		return nil, fmt.Errorf("token_claims.decode: %w", ErrPayloadJSON)
	}
	return claims, nil
}

// ResolveRole applies the claim-shape precedence: explicit role, then
// userRole, then the first element of roles. An empty string means no
// recognized shape matched.
func (claims *Claims) ResolveRole() string {
	if claims == nil {
		return ""
	}
	if strings.TrimSpace(claims.Role) != "" {
		return claims.Role
	}
	if strings.TrimSpace(claims.UserRole) != "" {
		return claims.UserRole
	}
	if len(claims.Roles) > 0 && strings.TrimSpace(claims.Roles[0]) != "" {
		return claims.Roles[0]
	}
	return ""
}

// DisplayName returns the best available name claim.
func (claims *Claims) DisplayName() string {
	if claims == nil {
		return ""
	}
	if claims.Username != "" {
		return claims.Username
	}
	if claims.Name != "" {
		return claims.Name
	}
	return claims.Subject
}

// EmailAddress returns the email claim, falling back to the subject when the
// subject looks like an address.
func (claims *Claims) EmailAddress() string {
	if claims == nil {
		return ""
	}
	if claims.Email != "" {
		return claims.Email
	}
	if strings.Contains(claims.Subject, "@") {
		return claims.Subject
	}
	return ""
}

func decodeBase64URLSegment(segment string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(segment); err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(segment)
}
