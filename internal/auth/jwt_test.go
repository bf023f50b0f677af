// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fahrplanbuch/fahrplanbuch/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, lifetime time.Duration) *JWTManager {
	t.Helper()

	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:     testSecret,
		TokenLifetime: lifetime,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestNewJWTManagerRejectsEmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)

	token, err := m.GenerateToken("curator", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "curator" {
		t.Errorf("Username = %q", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q", claims.Role)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, -time.Minute)

	token, err := m.GenerateToken("curator", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)
	other := newTestManager(t, time.Hour)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")

	token, err := m.GenerateToken("curator", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected error for token signed with different secret")
	}
}

func TestValidateRejectsTampered(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)

	token, err := m.GenerateToken("curator", "editor")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := m.ValidateToken(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Username: "attacker",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expected error for alg=none token")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)
	if _, err := m.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}
