package issuer

import (
	"testing"
	"time"

	"github.com/hrmskit/sessiond/internal/credstore"
	"github.com/hrmskit/sessiond/internal/identity"
	"github.com/hrmskit/sessiond/pkg/tokenclaims"
)

type fixedClock struct {
	timestamp time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.timestamp
}

func TestMintAccessTokenRejectsEmptySubject(t *testing.T) {
	t.Parallel()

	_, _, err := MintAccessToken(fixedClock{timestamp: time.Unix(1700000000, 0)}, credstore.UserRecord{}, "hrms-mock", []byte("signing-key"), time.Minute)
	if err == nil {
		t.Fatalf("expected error when record ID is empty")
	}

	expected := "jwt.mint.failure: subject must be non-empty"
	if err.Error() != expected {
		t.Fatalf("expected error %q, got %q", expected, err.Error())
	}
}

func TestMintAccessTokenCarriesClockTimestamps(t *testing.T) {
	t.Parallel()

	reference := time.Unix(1700000000, 0).UTC()
	record := credstore.UserRecord{ID: "user-1", Email: "hr@hrms.com", Name: "HR", Role: identity.RoleHR}
	token, expiresAt, err := MintAccessToken(fixedClock{timestamp: reference}, record, "hrms-mock", []byte("signing-key"), 2*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected signed token")
	}
	expectedExpiry := reference.Add(2 * time.Minute)
	if !expiresAt.Equal(expectedExpiry) {
		t.Fatalf("expected expiry %v, got %v", expectedExpiry, expiresAt)
	}
}

func TestMintedTokenDecodesWithClientCodec(t *testing.T) {
	t.Parallel()

	record := credstore.UserRecord{ID: "user-2", Email: "manager@hrms.com", Name: "Team Manager", Role: identity.RoleManager}
	token, _, err := MintAccessToken(NewSystemClock(), record, "hrms-mock", []byte("signing-key"), time.Minute)
	if err != nil {
		t.Fatalf("unexpected mint error: %v", err)
	}

	claims, decodeErr := tokenclaims.Decode(token)
	if decodeErr != nil {
		t.Fatalf("expected minted token to decode: %v", decodeErr)
	}
	if claims.ResolveRole() != "manager" {
		t.Fatalf("expected resolved role manager, got %q", claims.ResolveRole())
	}
	if claims.EmailAddress() != "manager@hrms.com" {
		t.Fatalf("expected email claim, got %q", claims.EmailAddress())
	}
	if claims.Subject != "user-2" {
		t.Fatalf("expected subject user-2, got %q", claims.Subject)
	}
}
