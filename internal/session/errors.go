package session

import "errors"

// Sentinel errors surfaced by the issuer client and the manager. Decode
// failures never appear here: they are absorbed into an unauthenticated
// state rather than propagated.
var (
	// ErrMissingCredentials marks a login attempt without email or password.
	ErrMissingCredentials = errors.New("session.login.missing_credentials")
	// ErrInvalidCredentials marks a login the issuer rejected with 401.
	ErrInvalidCredentials = errors.New("session.login.invalid_credentials")
	// ErrMalformedResponse marks an issuer response missing required fields.
	ErrMalformedResponse = errors.New("session.login.malformed_response")
	// ErrUndecodableToken marks a login response whose access token yields no role.
	ErrUndecodableToken = errors.New("session.login.undecodable_token")
	// ErrIssuerUnreachable marks a transport failure or timeout calling the issuer.
	ErrIssuerUnreachable = errors.New("session.issuer.unreachable")
	// ErrIssuerFailure marks an unexpected issuer-side status code.
	ErrIssuerFailure = errors.New("session.issuer.failure")
	// ErrUnauthorized marks a 401 from a bearer-protected endpoint.
	ErrUnauthorized = errors.New("session.issuer.unauthorized")
)
