package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

type stubJWT struct {
	claims *auth.Claims
	err    error
	seen   string
}

func (s *stubJWT) GenerateToken(context.Context, uuid.UUID) (string, error) {
	return "", errors.New("not used")
}

func (s *stubJWT) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		validateErr    error
		expectedStatus int
		expectedToken  string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer good-token",
			expectedStatus: http.StatusOK,
			expectedToken:  "good-token",
		},
		{
			name:           "lowercase scheme",
			authHeader:     "bearer good-token",
			expectedStatus: http.StatusOK,
			expectedToken:  "good-token",
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwdw==",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty token",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired",
			authHeader:     "Bearer old",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedToken:  "old",
		},
		{
			name:           "invalid",
			authHeader:     "Bearer forged",
			validateErr:    auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
			expectedToken:  "forged",
		},
		{
			name:           "unexpected failure",
			authHeader:     "Bearer token",
			validateErr:    errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedToken:  "token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stub := &stubJWT{err: tt.validateErr}
			if tt.validateErr == nil {
				stub.claims = &auth.Claims{UserID: userID}
			}

			var gotUser uuid.UUID
			handler := NewAuthMiddleware(stub).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/pet", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedToken, stub.seen)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, gotUser)
			} else {
				assert.Equal(t, uuid.Nil, gotUser)
			}
		})
	}
}
