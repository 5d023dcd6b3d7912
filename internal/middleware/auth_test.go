package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"snagdef/internal/model"
	"snagdef/internal/repository"
	"snagdef/internal/token"
)

func newTestGate(t *testing.T) (*AuthMiddleware, *repository.MemoryUserStore, *token.Codec) {
	t.Helper()

	store := repository.NewMemoryUserStore()
	codec := token.NewCodec("test-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthMiddleware(codec, store), store, codec
}

func addUser(t *testing.T, store *repository.MemoryUserStore, username string, role model.Role) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, store.Create(context.Background(), model.User{
		ID:           username + "-id",
		Username:     username,
		PasswordHash: "irrelevant",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	gate, store, codec := newTestGate(t)
	addUser(t, store, "alice", model.RoleUser)

	var seen model.AuthUser
	handler := gate.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		seen = user
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token rejected as bearer credential", func(t *testing.T) {
		refresh, err := codec.IssueRefreshToken("alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		ghost, err := codec.IssueAccessToken("ghost")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+ghost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		access, err := codec.IssueAccessToken("alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", seen.Username)
		require.Equal(t, model.RoleUser, seen.Role)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	gate, store, codec := newTestGate(t)
	addUser(t, store, "alice", model.RoleUser)
	addUser(t, store, "root", model.RoleAdmin)

	handler := gate.RequireAuth(gate.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	do := func(username string) int {
		access, err := codec.IssueAccessToken(username)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusForbidden, do("alice"))
	require.Equal(t, http.StatusOK, do("root"))
}

func TestRequireAdmin_WithoutAuthenticatedUser(t *testing.T) {
	t.Parallel()
	gate, _, _ := newTestGate(t)

	handler := gate.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
