package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/collab/internal/server/middleware"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func identityEcho(t *testing.T, gotID *uuid.UUID, gotName *string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.UserIDFromContext(r.Context())
		require.True(t, ok, "handler must see the user id")
		*gotID = id
		name, _ := middleware.UserNameFromContext(r.Context())
		*gotName = name
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthBearerHeader(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"uid":  userID.String(),
		"name": "Avery",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var gotID uuid.UUID
	var gotName string
	handler := middleware.Auth(testSecret)(identityEcho(t, &gotID, &gotName))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "Avery", gotName)
}

func TestAuthQueryParamToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"uid": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var gotID uuid.UUID
	var gotName string
	handler := middleware.Auth(testSecret)(identityEcho(t, &gotID, &gotName))

	req := httptest.NewRequest(http.MethodGet, "/ws/board?access_token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
}

func TestAuthRejections(t *testing.T) {
	t.Parallel()

	pass := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler must not run for rejected requests")
	})

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{
			name:  "no credentials",
			setup: func(*http.Request) {},
		},
		{
			name: "malformed token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-jwt")
			},
		},
		{
			name: "wrong secret",
			setup: func(r *http.Request) {
				tok := signToken(t, "another-secret-another-secret-32", jwt.MapClaims{
					"uid": uuid.New().String(),
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				r.Header.Set("Authorization", "Bearer "+tok)
			},
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				tok := signToken(t, testSecret, jwt.MapClaims{
					"uid": uuid.New().String(),
					"exp": time.Now().Add(-time.Hour).Unix(),
				})
				r.Header.Set("Authorization", "Bearer "+tok)
			},
		},
		{
			name: "uid is not a uuid",
			setup: func(r *http.Request) {
				tok := signToken(t, testSecret, jwt.MapClaims{
					"uid": "user-42",
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				r.Header.Set("Authorization", "Bearer "+tok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.Auth(testSecret)(pass)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRateLimitPerUser(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var served int
	handler := middleware.RateLimit(ctx, 1, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	}))

	userID := uuid.New()
	do := func(id uuid.UUID) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, id))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Burst of 2, then limited.
	assert.Equal(t, http.StatusOK, do(userID))
	assert.Equal(t, http.StatusOK, do(userID))
	assert.Equal(t, http.StatusTooManyRequests, do(userID))

	// Another user has an independent budget.
	assert.Equal(t, http.StatusOK, do(uuid.New()))
	assert.Equal(t, 3, served)
}

func TestRateLimitSkipsAnonymous(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "requests without identity bypass the limiter")
	}
}
