package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iho/cashbook/internal/domain"
	"github.com/iho/cashbook/internal/infrastructure/auth"
)

// BranchHeader names the branch when authentication is disabled.
const BranchHeader = "X-Branch-ID"

// ContextKey is the type for context keys
type ContextKey string

const (
	// IdentityContextKey is the context key for the caller identity
	IdentityContextKey ContextKey = "identity"
)

// Identity is who a request acts for.
type Identity struct {
	Operator string
	BranchID string
}

// AuthMiddleware requires a bearer token carrying a branch claim.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token has expired"
				}
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", msg)
				return
			}

			if claims.BranchID == "" {
				writeProblem(w, http.StatusForbidden, "Forbidden", "token carries no branch")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{Operator: claims.Subject, BranchID: claims.BranchID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HeaderIdentity trusts the X-Branch-ID header. It is only mounted when
// authentication is disabled.
func HeaderIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if branch := strings.TrimSpace(r.Header.Get(BranchHeader)); branch != "" {
			r = r.WithContext(WithIdentity(r.Context(), Identity{BranchID: branch}))
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext extracts the caller identity from context
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	return id, ok
}

// BranchResolver resolves the caller's branch from the request context.
type BranchResolver struct{}

// ResolveBranch implements usecase.OwnerResolver.
func (BranchResolver) ResolveBranch(ctx context.Context) (string, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.BranchID == "" {
		return "", fmt.Errorf("%w: no branch given and none attached to the request", domain.ErrInvalidOwner)
	}
	return id.BranchID, nil
}
