// Package guard holds the pure authorization decisions behind route
// guarding. Decisions are plain values: the rendering layer turns them into
// redirects or rendered subtrees, and nothing here ever returns an error.
package guard

import (
	"github.com/hrmskit/sessiond/internal/identity"
	"github.com/hrmskit/sessiond/internal/session"
)

// DecisionKind classifies what the caller should do with the route.
type DecisionKind int

const (
	// DecisionAllow renders the guarded subtree.
	DecisionAllow DecisionKind = iota
	// DecisionWait renders a neutral placeholder; no redirect yet.
	DecisionWait
	// DecisionRedirect navigates to Target.
	DecisionRedirect
)

// String names the kind for logs and test output.
func (kind DecisionKind) String() string {
	switch kind {
	case DecisionAllow:
		return "allow"
	case DecisionWait:
		return "wait"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating a guard. From carries the originally
// requested path on login redirects so the caller can return the user there.
type Decision struct {
	Kind   DecisionKind
	Target string
	From   string
}

func allow() Decision {
	return Decision{Kind: DecisionAllow}
}

func wait() Decision {
	return Decision{Kind: DecisionWait}
}

func redirect(target string) Decision {
	return Decision{Kind: DecisionRedirect, Target: target}
}

// Private guards an authenticated route. While the session is still being
// resolved it decides Wait; an unauthenticated session redirects to the
// login page preserving the requested path; a role outside allowedRoles
// redirects to the unauthorized page. An empty allowedRoles admits any
// authenticated role.
func Private(state session.AuthState, requestedPath string, allowedRoles ...identity.Role) Decision {
	switch state.Status {
	case session.StatusInit, session.StatusChecking:
		return wait()
	case session.StatusAuthenticated:
	default:
		decision := redirect(identity.PathLogin)
		decision.From = requestedPath
		return decision
	}
	if state.User == nil {
		decision := redirect(identity.PathLogin)
		decision.From = requestedPath
		return decision
	}
	if len(allowedRoles) == 0 {
		return allow()
	}
	for _, role := range allowedRoles {
		if state.User.Role == role {
			return allow()
		}
	}
	return redirect(identity.PathUnauthorized)
}

// Public guards a route only meaningful without a session, like the login
// form. An authenticated session is sent back to the application root.
func Public(state session.AuthState) Decision {
	if state.Status == session.StatusAuthenticated && state.User != nil {
		return redirect(identity.PathRoot)
	}
	return allow()
}

// RoleLanding picks the role-specific landing page: no identity goes to
// login, a role outside the landing table goes to the unauthorized page.
func RoleLanding(state session.AuthState) Decision {
	if state.Status != session.StatusAuthenticated || state.User == nil {
		return redirect(identity.PathLogin)
	}
	landingPath, ok := identity.LandingPath(state.User.Role)
	if !ok {
		return redirect(identity.PathUnauthorized)
	}
	return redirect(landingPath)
}
