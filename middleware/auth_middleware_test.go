package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireAuth_ValidToken(t *testing.T) {
	mw := NewAuthMiddleware(NewHMACValidator(testSecret), zap.NewNop())

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "cli-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var gotClaims *Claims
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "cli-user", gotClaims.Sub)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	mw := NewAuthMiddleware(NewHMACValidator(testSecret), zap.NewNop())
	next, called := okHandler()
	handler := mw.RequireAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	mw := NewAuthMiddleware(NewHMACValidator(testSecret), zap.NewNop())
	next, called := okHandler()
	handler := mw.RequireAuth(next)

	for _, header := range []string{"Basic abc123", "Bearer", "justatoken"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
	assert.False(t, *called)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	mw := NewAuthMiddleware(NewHMACValidator(testSecret), zap.NewNop())
	next, called := okHandler()
	handler := mw.RequireAuth(next)

	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "cli-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	mw := NewAuthMiddleware(NewHMACValidator(testSecret), zap.NewNop())
	next, called := okHandler()
	handler := mw.RequireAuth(next)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "cli-user",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestHMACValidator_RejectsUnsignedToken(t *testing.T) {
	v := NewHMACValidator(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), unsigned)
	assert.Error(t, err)
}
