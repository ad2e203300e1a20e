package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mossy-p/chat-gateway/internal/auth"
)

const secret = "test-secret"

func mintToken(t *testing.T, claims auth.Claims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() auth.Claims {
	return auth.Claims{
		UserID:   "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerify_ValidToken(t *testing.T) {
	identity, err := auth.Verify(secret, mintToken(t, validClaims(), secret))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.UserID != "u1" || identity.Username != "alice" {
		t.Errorf("identity = %+v, want u1/alice", identity)
	}
}

func TestVerify_UsernameDefaultsToUserID(t *testing.T) {
	claims := validClaims()
	claims.Username = ""

	identity, err := auth.Verify(secret, mintToken(t, claims, secret))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.Username != "u1" {
		t.Errorf("Username = %q, want fallback to user id", identity.Username)
	}
}

func TestVerify_RejectsBadTokens(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	missingUser := validClaims()
	missingUser.UserID = ""

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong key", mintToken(t, validClaims(), "other-secret")},
		{"expired", mintToken(t, expired, secret)},
		{"no user id", mintToken(t, missingUser, secret)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.Verify(secret, tc.token); err == nil {
				t.Error("Verify() error = nil, want rejection")
			}
		})
	}
}
