package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/Zymart/shopbot-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "shopbot-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseServiceToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	token, err := MintServiceToken(cfg, now, ServiceTokenPayload{UserID: "123456789012345678"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseServiceToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "123456789012345678" {
		t.Fatalf("user id = %q", claims.UserID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a generated jti")
	}
}

func TestMintServiceTokenRequiresUserID(t *testing.T) {
	if _, err := MintServiceToken(testJWTConfig(), time.Now(), ServiceTokenPayload{}); err == nil {
		t.Fatalf("expected error for blank user id")
	}
}

func TestParseServiceTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintServiceToken(cfg, time.Now(), ServiceTokenPayload{UserID: "42"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseServiceToken(other, token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestParseServiceTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintServiceToken(cfg, time.Now(), ServiceTokenPayload{UserID: "42"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseServiceToken(other, token); err == nil {
		t.Fatalf("expected issuer mismatch")
	}
}

func TestParseServiceTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintServiceToken(cfg, time.Now().Add(-2*time.Hour), ServiceTokenPayload{UserID: "42"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = ParseServiceToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}
