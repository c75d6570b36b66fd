package auth

import (
	"strings"
	"testing"

	"github.com/shoplane/storefront-backend/pkg/config"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:            "test-secret",
		Issuer:            "shoplane-test",
		ExpirationMinutes: 60,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	token, err := IssueSessionToken(cfg, "cust-1", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.CustomerID != "cust-1" || claims.Guest {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestGuestFlagSurvivesRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	token, err := IssueSessionToken(cfg, "guest-abc", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !claims.Guest {
		t.Fatal("expected guest flag to survive")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	cfg := testSessionConfig()
	token, err := IssueSessionToken(cfg, "cust-1", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, parseErr := ParseSessionToken(cfg, tampered); parseErr == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	issued := testSessionConfig()
	issued.Issuer = "someone-else"
	token, err := IssueSessionToken(issued, "cust-1", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, parseErr := ParseSessionToken(testSessionConfig(), token)
	if appErr := pkgerrors.As(parseErr); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", parseErr)
	}
}

func TestIssueRequiresCustomerID(t *testing.T) {
	t.Parallel()

	_, err := IssueSessionToken(testSessionConfig(), "", false)
	if err == nil || !strings.Contains(err.Error(), "customer id") {
		t.Fatalf("expected customer id error, got %v", err)
	}
}
