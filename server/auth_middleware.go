package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-identity-service/authz"
	"github.com/jrsteele09/go-identity-service/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the verified access token claims
const ContextKeyClaims ContextKey = "claims"

// RequireAuth validates the Bearer access token (signature and lifetime)
// and injects its claims into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(s.verifier.Parse)
}

// RequireAuthAllowExpired validates the Bearer token's signature only. The
// refresh endpoint accepts an access token past its lifetime: the caller
// proves identity for rotation even though the token would fail normal auth.
func (s *Server) RequireAuthAllowExpired() func(http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(s.verifier.ParseExpired)
}

func (s *Server) requireAuth(parse func(string) (*token.Claims, error)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeInvalidToken, "Missing Authorization header")
				return
			}

			claims, err := parse(rawToken)
			if err != nil {
				writeServiceError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// Authorize gates the endpoint through the role table. Default-deny: an
// endpoint absent from the table is inaccessible to every caller.
func (s *Server) Authorize(controller, action string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, CodeInvalidClaims, "Invalid user claims")
				return
			}

			if !authz.Decide(s.roleTable, controller, action, claims.Roles) {
				writeError(w, http.StatusForbidden, CodeForbidden, "Insufficient role for this endpoint")
				return
			}

			next(w, r)
		}
	}
}

// ClaimsFromContext returns the verified claims injected by RequireAuth
func ClaimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" || rawToken == authHeader {
		return "", false
	}
	return rawToken, true
}
