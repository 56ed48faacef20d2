package util

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("U1", "alice@x.com", "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if claims.UserID != "U1" {
		t.Fatalf("expected user id U1, got %q", claims.UserID)
	}
	if claims.Email != "alice@x.com" {
		t.Fatalf("expected email alice@x.com, got %q", claims.Email)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("U1", "alice@x.com", "secret")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Fatalf("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token", "secret"); err == nil {
		t.Fatalf("expected validation to fail")
	}
}
