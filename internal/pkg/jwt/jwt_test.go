package jwt

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret"

// TestAccessTokenRoundTrip verifies a generated token validates and carries
// the identity claims.
func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "doc@test.local", "doc", "doctor", testSecret, 60)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "doc" || claims.Role != "doctor" {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

// TestValidateAccessToken_WrongSecret verifies tokens signed with a different
// key are rejected.
func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@test.local", "a", "parent", testSecret, 60)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("wrong secret: got %v, want ErrTokenInvalid", err)
	}
}

// TestValidateAccessToken_Expired verifies an expired token surfaces the
// expiry sentinel, not the generic invalid error.
func TestValidateAccessToken_Expired(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@test.local", "a", "parent", testSecret, -1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateAccessToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: got %v, want ErrTokenExpired", err)
	}
}

// TestRefreshTokenRoundTrip verifies the refresh token carries its token ID.
func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "tok-123", testSecret, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.TokenID != "tok-123" {
		t.Errorf("claims mismatch: %+v", claims)
	}
}

// TestGetExpiryTime sanity-checks the refresh expiry helper.
func TestGetExpiryTime(t *testing.T) {
	expiry := GetExpiryTime(7)
	want := time.Now().Add(7 * 24 * time.Hour)
	if diff := expiry.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry off by %v", diff)
	}
}
