package session

import "github.com/hrmskit/sessiond/internal/identity"

// Status is the lifecycle state of the client session.
type Status int

const (
	StatusInit Status = iota
	StatusChecking
	StatusAuthenticated
	StatusUnauthenticated
)

// String names the status for logs.
func (status Status) String() string {
	switch status {
	case StatusInit:
		return "init"
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthState is the manager-owned session state consumers read. Err carries
// the most recent login failure for display; it is never set by logout.
type AuthState struct {
	Status Status
	User   *identity.User
	Err    error
}
