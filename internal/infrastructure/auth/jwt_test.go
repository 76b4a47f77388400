package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/cashbook/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	token, err := manager.Generate("cajero-7", "sucursal-centro")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.BranchID != "sucursal-centro" || claims.Subject != "cajero-7" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestJWTManagerGenerateRequiresBranch(t *testing.T) {
	t.Parallel()

	_, err := auth.NewJWTManager("secret", time.Minute).Generate("cajero-7", "")
	if !errors.Is(err, auth.ErrMissingScope) {
		t.Fatalf("expected ErrMissingScope, got %v", err)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims auth.Claims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	valid := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  error
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{
					BranchID: "b",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
					},
				})
			},
			want: auth.ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("other"), auth.Claims{BranchID: "b", RegisteredClaims: valid})
			},
			want: auth.ErrInvalidToken,
		},
		{
			name: "no branch",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("secret"), auth.Claims{RegisteredClaims: valid})
			},
			want: auth.ErrMissingScope,
		},
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not.a.token" },
			want:  auth.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.Verify(tt.token(t)); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
