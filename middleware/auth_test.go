package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morhendos/tenis-del-parque/models"
)

var testSecret = []byte("test-secret")

func doAuthenticated(t *testing.T, token string, mw ...func(http.Handler) http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateRoundTrip(t *testing.T) {
	token, err := NewToken(testSecret, 42, models.RolePlayer, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	var gotID int
	var gotRole models.PlayerRole
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotID, err = PlayerIDFromContext(r.Context())
		require.NoError(t, err)
		gotRole, err = PlayerRoleFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(inner).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, gotID)
	assert.Equal(t, models.RolePlayer, gotRole)
}

func TestAuthenticateRejects(t *testing.T) {
	expired, err := NewToken(testSecret, 42, models.RolePlayer, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	wrongKey, err := NewToken([]byte("other-secret"), 42, models.RolePlayer, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"garbage token", "not.a.jwt"},
		{"expired token", expired},
		{"wrong signing key", wrongKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuthenticated(t, tt.token, Authenticate(testSecret))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthorize(t *testing.T) {
	adminToken, err := NewToken(testSecret, 1, models.RoleAdmin, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	playerToken, err := NewToken(testSecret, 2, models.RolePlayer, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	adminOnly := []func(http.Handler) http.Handler{Authenticate(testSecret), Authorize(models.RoleAdmin)}

	rec := doAuthenticated(t, adminToken, adminOnly...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doAuthenticated(t, playerToken, adminOnly...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPlayerIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := PlayerIDFromContext(req.Context())
	assert.Error(t, err)
}
