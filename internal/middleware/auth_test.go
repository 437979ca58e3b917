package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(token string) (*domain.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func identityEcho(t *testing.T, want *domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, want, IdentityFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestJWTAuth(t *testing.T) {
	user := &domain.Identity{UserID: primitive.NewObjectID(), Email: "u@example.com", Role: domain.RoleUser}
	verifier := new(MockVerifier)
	verifier.On("Verify", "good").Return(user, nil)
	verifier.On("Verify", "expired").Return(nil, domain.ErrInvalidToken)

	h := JWTAuth(verifier)(identityEcho(t, user))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, message: "No token provided"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized, message: "Invalid authorization header format"},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized, message: "Invalid authorization header format"},
		{name: "rejected token", header: "Bearer expired", status: http.StatusUnauthorized, message: "Invalid or expired token"},
		{name: "valid token", header: "bearer good", status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rec.Body.String())
			}
		})
	}
	verifier.AssertExpectations(t)
}

func TestRequireAdmin(t *testing.T) {
	admin := &domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin}
	user := &domain.Identity{UserID: primitive.NewObjectID(), Role: domain.RoleUser}

	tests := []struct {
		name     string
		identity *domain.Identity
		status   int
	}{
		{name: "anonymous", identity: nil, status: http.StatusUnauthorized},
		{name: "regular user", identity: user, status: http.StatusForbidden},
		{name: "admin", identity: admin, status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			RequireAdmin(identityEcho(t, tt.identity)).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
