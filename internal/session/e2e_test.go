package session_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/hrmskit/sessiond/internal/credstore"
	"github.com/hrmskit/sessiond/internal/guard"
	"github.com/hrmskit/sessiond/internal/identity"
	"github.com/hrmskit/sessiond/internal/issuer"
	"github.com/hrmskit/sessiond/internal/session"
)

func startIssuer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := credstore.NewMemoryStore()
	if err := credstore.SeedDefaults(context.Background(), store); err != nil {
		t.Fatalf("failed to seed credential store: %v", err)
	}

	router := gin.New()
	issuer.MountAuthRoutes(router, issuer.ServerConfig{
		SigningKey:  []byte("e2e-signing-key"),
		TokenIssuer: "hrms-mock",
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  24 * time.Hour,
	}, store, issuer.NewSystemClock(), zaptest.NewLogger(t), issuer.NewCounterMetrics())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestSessionLifecycleAgainstIssuer(t *testing.T) {
	server := startIssuer(t)
	storage := session.NewMemoryKeyValue()
	logger := zaptest.NewLogger(t)
	client := session.NewHTTPIssuerClient(server.URL, 2*time.Second)

	manager := session.NewManager(client, session.NewStore(storage, logger), logger)
	if manager.Snapshot().Status != session.StatusUnauthenticated {
		t.Fatalf("expected fresh manager to be unauthenticated")
	}

	landingPath, loginErr := manager.Login(context.Background(), session.Credentials{Email: "admin@hrms.com", Password: "admin123"})
	if loginErr != nil {
		t.Fatalf("login failed: %v", loginErr)
	}
	if landingPath != "/dashboard" {
		t.Fatalf("expected admin landing /dashboard, got %q", landingPath)
	}

	state := manager.Snapshot()
	if state.Status != session.StatusAuthenticated || state.User == nil || state.User.Role != identity.RoleAdmin {
		t.Fatalf("unexpected state after login: %#v", state)
	}

	if decision := guard.Private(state, "/dashboard", identity.RoleAdmin); decision.Kind != guard.DecisionAllow {
		t.Fatalf("expected private guard to allow admin, got %#v", decision)
	}
	if decision := guard.Public(state); decision.Kind != guard.DecisionRedirect || decision.Target != "/" {
		t.Fatalf("expected public guard to bounce authenticated session, got %#v", decision)
	}

	// The persisted session survives a process restart.
	restarted := session.NewManager(client, session.NewStore(storage, logger), logger)
	restartedState := restarted.Snapshot()
	if restartedState.Status != session.StatusAuthenticated || restartedState.User == nil || restartedState.User.Role != identity.RoleAdmin {
		t.Fatalf("expected restored session, got %#v", restartedState)
	}

	store := session.NewStore(storage, logger)
	profile, whoErr := client.WhoAmI(context.Background(), store.Token())
	if whoErr != nil {
		t.Fatalf("whoami failed: %v", whoErr)
	}
	if profile.Email != "admin@hrms.com" || profile.Role != "admin" {
		t.Fatalf("unexpected profile: %#v", profile)
	}

	loginPath := manager.Logout(context.Background())
	if loginPath != "/login" {
		t.Fatalf("expected /login after logout, got %q", loginPath)
	}
	if store.Token() != "" || store.RefreshToken() != "" {
		t.Fatalf("expected persisted session to be purged")
	}
}

func TestLoginRejectionAgainstIssuer(t *testing.T) {
	server := startIssuer(t)
	storage := session.NewMemoryKeyValue()
	logger := zaptest.NewLogger(t)
	client := session.NewHTTPIssuerClient(server.URL, 2*time.Second)

	manager := session.NewManager(client, session.NewStore(storage, logger), logger)
	_, loginErr := manager.Login(context.Background(), session.Credentials{Email: "admin@hrms.com", Password: "wrong"})
	if !errors.Is(loginErr, session.ErrInvalidCredentials) {
		t.Fatalf("expected invalid-credentials error, got %v", loginErr)
	}
	if manager.Snapshot().Status != session.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated state after rejection")
	}

	store := session.NewStore(storage, logger)
	if store.Token() != "" || store.RefreshToken() != "" {
		t.Fatalf("expected nothing persisted after rejection")
	}
}

func TestLogoutPurgesWhenIssuerIsDown(t *testing.T) {
	server := startIssuer(t)
	storage := session.NewMemoryKeyValue()
	logger := zaptest.NewLogger(t)
	client := session.NewHTTPIssuerClient(server.URL, 2*time.Second)

	manager := session.NewManager(client, session.NewStore(storage, logger), logger)
	if _, err := manager.Login(context.Background(), session.Credentials{Email: "employee@hrms.com", Password: "emp123"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	server.Close()

	loginPath := manager.Logout(context.Background())
	if loginPath != "/login" {
		t.Fatalf("expected /login, got %q", loginPath)
	}
	if manager.Snapshot().Status != session.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated state")
	}

	store := session.NewStore(storage, logger)
	if store.Token() != "" || store.RefreshToken() != "" || store.User() != nil {
		t.Fatalf("expected local purge despite unreachable issuer")
	}
}
