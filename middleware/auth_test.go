package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestVerifyToken(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{
		"user_id":  "u-1",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	claims, err := VerifyToken(valid, testSecret)
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if claims.UserID != "u-1" || !claims.IsAdmin {
		t.Fatalf("claims = %+v, want UserID=u-1 IsAdmin=true", claims)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "not-a-jwt"},
		{
			"expired",
			signToken(t, testSecret, jwt.MapClaims{
				"user_id": "u-1",
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			"wrong secret",
			signToken(t, "other-secret", jwt.MapClaims{
				"user_id": "u-1",
				"exp":     time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			"no user id",
			signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyToken(tc.token, testSecret); err == nil {
				t.Fatal("expected rejection, got nil error")
			}
		})
	}
}

func TestVerifyTokenDefaultsAdminFalse(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "u-2",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	claims, err := VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("token rejected: %v", err)
	}
	if claims.IsAdmin {
		t.Fatal("missing is_admin claim should default to false")
	}
}
