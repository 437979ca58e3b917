package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
)

// TokenVerifier decodes a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

type errorBody struct {
	Message string `json:"message"`
}

func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: msg})
}

// JWTAuth requires an "Authorization: Bearer <token>" header and stores the
// verified identity in the request context.
func JWTAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, http.StatusUnauthorized, "No token provided")
				return
			}
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				reject(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			identity, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				reject(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin must run after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil {
			reject(w, http.StatusUnauthorized, "No token provided")
			return
		}
		if !identity.IsAdmin() {
			reject(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
