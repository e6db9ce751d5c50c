package identity

import "github.com/hrmskit/sessiond/pkg/tokenclaims"

// User is the identity a session represents, as the client sees it.
type User struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Role          Role     `json:"role"`
	Permissions   []string `json:"permissions,omitempty"`
	Status        string   `json:"status,omitempty"`
	EmailVerified bool     `json:"emailVerified,omitempty"`
	LastLogin     string   `json:"lastLogin,omitempty"`
}

// FromClaims synthesizes a user identity from decoded token claims. It
// returns nil when the claims resolve to no known role, which callers must
// treat as "no session".
func FromClaims(claims *tokenclaims.Claims) *User {
	if claims == nil {
		return nil
	}
	role := ParseRole(claims.ResolveRole())
	if role == RoleUnknown {
		return nil
	}
	return &User{
		ID:            claims.Subject,
		Email:         claims.EmailAddress(),
		Name:          claims.DisplayName(),
		Role:          role,
		Status:        claims.Status,
		EmailVerified: claims.EmailVerified,
		LastLogin:     claims.LastLogin,
	}
}
