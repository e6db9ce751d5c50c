package tokenclaims

import (
	"encoding/base64"
	"errors"
	"reflect"
	"testing"
)

func encodePayload(t *testing.T, payload string) string {
	t.Helper()
	return "header." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".signature"
}

func TestDecodeRejectsMalformedTokens(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		tokenText string
		expected  error
	}{
		{name: "empty token", tokenText: "", expected: ErrEmptyToken},
		{name: "whitespace token", tokenText: "   ", expected: ErrEmptyToken},
		{name: "two segments", tokenText: "aaa.bbb", expected: ErrSegmentCount},
		{name: "four segments", tokenText: "aaa.bbb.ccc.ddd", expected: ErrSegmentCount},
		{name: "invalid base64 alphabet", tokenText: "aaa.!!!!.ccc", expected: ErrPayloadEncoding},
		{name: "payload not json", tokenText: "aaa." + base64.RawURLEncoding.EncodeToString([]byte("not-json")) + ".ccc", expected: ErrPayloadJSON},
		{name: "payload json array", tokenText: "aaa." + base64.RawURLEncoding.EncodeToString([]byte(`[1,2]`)) + ".ccc", expected: ErrPayloadJSON},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			claims, err := Decode(testCase.tokenText)
			if claims != nil {
				t.Fatalf("expected nil claims for %q", testCase.tokenText)
			}
			if !errors.Is(err, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, err)
			}
		})
	}
}

func TestDecodeIsPure(t *testing.T) {
	t.Parallel()

	tokenText := encodePayload(t, `{"role":"admin","username":"ada","roles":["admin","hr"]}`)
	first, firstErr := Decode(tokenText)
	second, secondErr := Decode(tokenText)
	if firstErr != nil || secondErr != nil {
		t.Fatalf("unexpected errors: %v %v", firstErr, secondErr)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected structurally identical claims, got %#v and %#v", first, second)
	}
}

func TestDecodeAcceptsPaddedBase64(t *testing.T) {
	t.Parallel()

	padded := "header." + base64.URLEncoding.EncodeToString([]byte(`{"role":"hr"}`)) + ".signature"
	claims, err := Decode(padded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Role != "hr" {
		t.Fatalf("expected role hr, got %q", claims.Role)
	}
}

func TestResolveRolePrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		claims   *Claims
		expected string
	}{
		{name: "nil claims", claims: nil, expected: ""},
		{name: "explicit role wins", claims: &Claims{Role: "admin", UserRole: "hr", Roles: []string{"manager"}}, expected: "admin"},
		{name: "userRole beats roles list", claims: &Claims{UserRole: "hr", Roles: []string{"manager"}}, expected: "hr"},
		{name: "first roles element", claims: &Claims{Roles: []string{"manager", "employee"}}, expected: "manager"},
		{name: "no recognized shape", claims: &Claims{Username: "ada"}, expected: ""},
		{name: "blank role falls through", claims: &Claims{Role: "  ", Roles: []string{"employee"}}, expected: "employee"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if resolved := testCase.claims.ResolveRole(); resolved != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, resolved)
			}
		})
	}
}

func TestDisplayNameAndEmailFallbacks(t *testing.T) {
	t.Parallel()

	claims := &Claims{Subject: "ada@hrms.com"}
	if claims.DisplayName() != "ada@hrms.com" {
		t.Fatalf("expected subject fallback, got %q", claims.DisplayName())
	}
	if claims.EmailAddress() != "ada@hrms.com" {
		t.Fatalf("expected subject email fallback, got %q", claims.EmailAddress())
	}

	claims = &Claims{Username: "ada", Name: "Ada L", Email: "ada@hrms.com"}
	if claims.DisplayName() != "ada" {
		t.Fatalf("expected username to win, got %q", claims.DisplayName())
	}
}
