package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hrmskit/sessiond/internal/identity"
	"github.com/hrmskit/sessiond/pkg/tokenclaims"
)

// Manager owns the AuthState and drives login, logout, and the startup check
// against the issuer and the persistence layer. Session-mutating operations
// are serialized by a single mutation lock: a second login or logout blocks
// until the in-flight one completes, so storage writes never interleave.
type Manager struct {
	client IssuerClient
	store  *Store
	logger *zap.Logger

	mutationMutex sync.Mutex

	stateMutex  sync.RWMutex
	state       AuthState
	subscribers []func(AuthState)
}

// NewManager constructs the manager and immediately runs the startup check
// against the persisted session, so the returned manager is never in the
// Init or Checking state.
func NewManager(client IssuerClient, store *Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	manager := &Manager{
		client: client,
		store:  store,
		logger: logger,
		state:  AuthState{Status: StatusInit},
	}
	manager.CheckAuth()
	return manager
}

// CheckAuth resolves the persisted session into Authenticated or
// Unauthenticated. An undecodable or role-less token is purged so the next
// startup does not re-read a stale entry. It never leaves the state Checking.
func (manager *Manager) CheckAuth() {
	manager.mutationMutex.Lock()
	defer manager.mutationMutex.Unlock()

	manager.setState(AuthState{Status: StatusChecking})

	tokenText := manager.store.Token()
	if tokenText == "" {
		manager.setState(AuthState{Status: StatusUnauthenticated})
		return
	}

	claims, decodeErr := tokenclaims.Decode(tokenText)
	if decodeErr != nil {
		manager.logger.Debug("persisted access token is undecodable, purging",
			zap.String("code", "session.check.undecodable_token"))
		manager.store.ClearAll()
		manager.setState(AuthState{Status: StatusUnauthenticated})
		return
	}

	user := identity.FromClaims(claims)
	if user == nil {
		manager.logger.Debug("persisted access token resolves no role, purging",
			zap.String("code", "session.check.no_role"))
		manager.store.ClearAll()
		manager.setState(AuthState{Status: StatusUnauthenticated})
		return
	}

	if cached := manager.store.User(); cached != nil && cached.Role == user.Role {
		// The cached profile carries fields the token omits.
		if user.ID == "" {
			user.ID = cached.ID
		}
		if user.Name == "" {
			user.Name = cached.Name
		}
		user.Permissions = cached.Permissions
	}

	manager.setState(AuthState{Status: StatusAuthenticated, User: user})
}

// Login authenticates against the issuer, persists the token pair, and
// returns the landing path for the resolved role. On any failure nothing is
// persisted, the state is Unauthenticated, and the error describes the
// failure class for display.
func (manager *Manager) Login(ctx context.Context, credentials Credentials) (string, error) {
	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		return "", fmt.Errorf("session.login: %w", ErrMissingCredentials)
	}

	manager.mutationMutex.Lock()
	defer manager.mutationMutex.Unlock()

	response, loginErr := manager.client.Login(ctx, credentials)
	if loginErr != nil {
		manager.setState(AuthState{Status: StatusUnauthenticated, Err: loginErr})
		return "", loginErr
	}

	user, validateErr := manager.validateLoginResponse(response)
	if validateErr != nil {
		manager.setState(AuthState{Status: StatusUnauthenticated, Err: validateErr})
		return "", validateErr
	}

	// All preconditions hold; both tokens are written before the state flips.
	manager.store.SetToken(response.AccessToken)
	manager.store.SetRefreshToken(response.RefreshToken)
	manager.store.SetUser(user)

	manager.setState(AuthState{Status: StatusAuthenticated, User: user})
	manager.logger.Info("session established",
		zap.String("code", "session.login.success"),
		zap.String("role", string(user.Role)))

	landingPath, ok := identity.LandingPath(user.Role)
	if !ok {
		landingPath = identity.PathRoot
	}
	return landingPath, nil
}

// Logout best-effort notifies the issuer, then unconditionally purges the
// local session. It returns the public login path for navigation.
func (manager *Manager) Logout(ctx context.Context) string {
	manager.mutationMutex.Lock()
	defer manager.mutationMutex.Unlock()

	refreshToken := manager.store.RefreshToken()
	if logoutErr := manager.client.Logout(ctx, refreshToken); logoutErr != nil {
		manager.logger.Warn("issuer logout failed, purging local session anyway",
			zap.String("code", "session.logout.issuer_failure"),
			zap.Error(logoutErr))
	}

	manager.store.ClearAll()
	manager.setState(AuthState{Status: StatusUnauthenticated})
	return identity.PathLogin
}

// HasRole reports strict equality against the resolved role.
func (manager *Manager) HasRole(role identity.Role) bool {
	state := manager.Snapshot()
	return state.User != nil && state.User.Role == role
}

// IsMainRole is the legacy alias for HasRole kept for callers of the old
// dashboard contract; multi-role claims are not consulted.
func (manager *Manager) IsMainRole(role identity.Role) bool {
	return manager.HasRole(role)
}

// Snapshot returns a copy of the current AuthState.
func (manager *Manager) Snapshot() AuthState {
	manager.stateMutex.RLock()
	defer manager.stateMutex.RUnlock()
	return manager.cloneStateLocked()
}

// Subscribe registers a listener invoked after every state transition. The
// listener runs on the mutating goroutine and must not call back into the
// manager's mutating operations.
func (manager *Manager) Subscribe(listener func(AuthState)) {
	if listener == nil {
		return
	}
	manager.stateMutex.Lock()
	defer manager.stateMutex.Unlock()
	manager.subscribers = append(manager.subscribers, listener)
}

func (manager *Manager) validateLoginResponse(response *LoginResponse) (*identity.User, error) {
	if response == nil ||
		strings.TrimSpace(response.AccessToken) == "" ||
		strings.TrimSpace(response.RefreshToken) == "" ||
		response.User.ID == "" ||
		response.User.Email == "" {
		return nil, fmt.Errorf("session.login: %w", ErrMalformedResponse)
	}

	claims, decodeErr := tokenclaims.Decode(response.AccessToken)
	if decodeErr != nil {
		return nil, fmt.Errorf("session.login: %w", ErrUndecodableToken)
	}

	role := identity.ParseRole(claims.ResolveRole())
	if role == identity.RoleUnknown {
		role = identity.ParseRole(response.User.Role)
	}
	if role == identity.RoleUnknown {
		return nil, fmt.Errorf("session.login: %w", ErrUndecodableToken)
	}

	return &identity.User{
		ID:            response.User.ID,
		Email:         response.User.Email,
		Name:          response.User.Name,
		Role:          role,
		Permissions:   response.User.Permissions,
		Status:        claims.Status,
		EmailVerified: claims.EmailVerified,
		LastLogin:     claims.LastLogin,
	}, nil
}

func (manager *Manager) setState(state AuthState) {
	manager.stateMutex.Lock()
	manager.state = state
	listeners := make([]func(AuthState), len(manager.subscribers))
	copy(listeners, manager.subscribers)
	snapshot := manager.cloneStateLocked()
	manager.stateMutex.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

func (manager *Manager) cloneStateLocked() AuthState {
	cloned := manager.state
	if manager.state.User != nil {
		userCopy := *manager.state.User
		cloned.User = &userCopy
	}
	return cloned
}
