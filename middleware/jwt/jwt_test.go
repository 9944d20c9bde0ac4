package jwt

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestNewTokenManager(t *testing.T) {
	secret := "test-secret"
	expireHours := 24
	refreshHours := 168

	tm := NewTokenManager(secret, expireHours, refreshHours)
	if tm == nil {
		t.Fatal("NewTokenManager returned nil")
	}
	if string(tm.secret) != secret {
		t.Errorf("Expected secret %s, got %s", secret, string(tm.secret))
	}

	expectedExpireDur := time.Duration(expireHours) * time.Hour
	if tm.expireDur != expectedExpireDur {
		t.Errorf("Expected expireDur %v, got %v", expectedExpireDur, tm.expireDur)
	}

	expectedRefreshDur := time.Duration(refreshHours) * time.Hour
	if tm.refreshDur != expectedRefreshDur {
		t.Errorf("Expected refreshDur %v, got %v", expectedRefreshDur, tm.refreshDur)
	}
}

func TestGenerateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 24, 168)
	account := "admin"

	token, err := tm.GenerateToken(account)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Error("Generated token is empty")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Account != account {
		t.Errorf("Expected Account %s, got %s", account, claims.Account)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 24, 168)
	other := NewTokenManager("other-secret", 24, 168)

	token, err := tm.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := other.ParseToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 24, 168)

	// 直接构造一个已过期的 token
	now := time.Now()
	claims := Claims{
		Account: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-3 * time.Hour)),
			NotBefore: jwt.NewNumericDate(now.Add(-3 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := tm.ParseToken(tokenString); err != ErrExpiredToken {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestRefreshToken_WithinWindow(t *testing.T) {
	// expire 1h, refresh window 24h：新签发的 token 立即可刷新
	tm := NewTokenManager("test-secret", 1, 24)

	token, err := tm.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	refreshed, err := tm.RefreshToken(token)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}

	claims, err := tm.ParseToken(refreshed)
	if err != nil {
		t.Fatalf("ParseToken on refreshed token failed: %v", err)
	}
	if claims.Account != "admin" {
		t.Errorf("Expected Account admin, got %s", claims.Account)
	}
}

func TestRefreshToken_NotEligible(t *testing.T) {
	// refresh window 远小于剩余有效期时不允许刷新
	tm := NewTokenManager("test-secret", 240, 1)

	token, err := tm.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := tm.RefreshToken(token); err == nil {
		t.Error("Expected refresh to be rejected, got nil error")
	}
}
