package jwt

import (
	"errors"
	"testing"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "somebody", "admin", testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Username != "somebody" {
		t.Errorf("username = %q", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "user", "user", testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	_, err = ValidateAccessToken(token, "a-different-secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	// Negative expiry backdates the token past its deadline
	token, err := GenerateAccessToken(1, "user", "user", testSecret, -5)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	_, err = ValidateAccessToken(token, testSecret)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := ValidateAccessToken("not.a.jwt", testSecret)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-1", testSecret, 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("user id = %d, want 7", claims.UserID)
	}
	if claims.TokenID != "token-id-1" {
		t.Errorf("token id = %q", claims.TokenID)
	}
}

func TestRefreshTokenNotValidAsAccessSecret(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-2", "refresh-secret", 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	// Refresh tokens signed with the refresh secret must not pass
	// validation against the access secret
	if _, err := ValidateRefreshToken(token, "access-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}
