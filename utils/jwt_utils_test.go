package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
)

func issueToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestExtractUserIDFromToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := issueToken(t, "test-secret", jwt.MapClaims{"uuid": "alice"})
	id, err := ExtractUserIDFromToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "alice" {
		t.Fatalf("expected alice, got %q", id)
	}
}

func TestExtractUserIDFromToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := issueToken(t, "another-secret", jwt.MapClaims{"uuid": "alice"})
	if _, err := ExtractUserIDFromToken(token); err == nil {
		t.Fatal("expected a signature error")
	}
}

func TestExtractUserIDFromToken_MissingClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := issueToken(t, "test-secret", jwt.MapClaims{"sub": "alice"})
	if _, err := ExtractUserIDFromToken(token); err == nil {
		t.Fatal("expected an error for a token without the uuid claim")
	}
}

func TestCallerIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token := issueToken(t, "test-secret", jwt.MapClaims{"uuid": "alice"})

	r := httptest.NewRequest("GET", "/api/projects", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	id, err := CallerIdentity(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "alice" {
		t.Fatalf("expected alice, got %q", id)
	}

	r = httptest.NewRequest("GET", "/api/subscriptions/project.updated?token="+token, nil)
	id, err = CallerIdentity(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "alice" {
		t.Fatalf("expected alice, got %q", id)
	}

	r = httptest.NewRequest("GET", "/api/projects", nil)
	if _, err := CallerIdentity(r); err == nil {
		t.Fatal("expected an error without credentials")
	}
}
