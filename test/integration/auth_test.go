package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"snagdef/internal/model"
)

func TestRegisterLoginAndProtectedAccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, pair := env.register(t, "carol", "pw1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)

	protected := env.doAuthed(t, http.MethodPost, "/agents/recon?ip_range=10.0.0.0/24", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, protected.StatusCode)

	rejected := env.doAuthed(t, http.MethodPost, "/agents/recon?ip_range=10.0.0.0/24", nil, "malformed.token.value")
	require.Equal(t, http.StatusUnauthorized, rejected.StatusCode)

	loginResp, loginPair := env.login(t, "carol", "pw1")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	require.NotEmpty(t, loginPair.AccessToken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, _ := env.register(t, "alice", "secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	wrongPassword, _ := env.login(t, "alice", "wrong")
	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	wrongDetail := errorDetail(t, wrongPassword)

	unknownUser, _ := env.login(t, "bob", "anything")
	require.Equal(t, http.StatusUnauthorized, unknownUser.StatusCode)
	require.Equal(t, wrongDetail, errorDetail(t, unknownUser))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, _ := env.register(t, "dana", "pw1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dup, _ := env.register(t, "dana", "pw2")
	require.Equal(t, http.StatusBadRequest, dup.StatusCode)
	require.Equal(t, "Username already exists", errorDetail(t, dup))
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, pair := env.register(t, "dave", "pw1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	first, firstPair := env.refresh(t, pair.RefreshToken)
	require.Equal(t, http.StatusOK, first.StatusCode)

	second, secondPair := env.refresh(t, pair.RefreshToken)
	require.Equal(t, http.StatusOK, second.StatusCode)

	// Each rotated access token works against a protected route.
	for _, rotated := range []model.TokenPair{firstPair, secondPair} {
		ok := env.doAuthed(t, http.MethodPost, "/agents/recon?ip_range=192.168.0.0/16", nil, rotated.AccessToken)
		require.Equal(t, http.StatusOK, ok.StatusCode)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, pair := env.register(t, "erin", "pw1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rejected, _ := env.refresh(t, pair.AccessToken)
	require.Equal(t, http.StatusUnauthorized, rejected.StatusCode)

	missing, _ := env.refresh(t, "")
	require.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestRefreshStaleSubject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, pair := env.register(t, "frank", "pw1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.users.Delete(context.Background(), "frank")

	gone, _ := env.refresh(t, pair.RefreshToken)
	require.Equal(t, http.StatusNotFound, gone.StatusCode)
	require.Equal(t, "User not found", errorDetail(t, gone))
}

func TestAdminOnlyEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// A freshly registered user holds the default role and is refused.
	resp, userPair := env.register(t, "grace", "pw1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	forbidden := env.doAuthed(t, http.MethodGet, "/auth/admin-only", nil, userPair.AccessToken)
	require.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	// The seeded admin passes the role gate.
	loginResp, adminPair := env.login(t, testAdminUsername, testAdminPassword)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	granted := env.doAuthed(t, http.MethodGet, "/auth/admin-only", nil, adminPair.AccessToken)
	require.Equal(t, http.StatusOK, granted.StatusCode)

	var body model.AdminOnlyResponse
	require.NoError(t, json.NewDecoder(granted.Body).Decode(&body))
	require.Equal(t, "Admin access granted to admin", body.Message)
	require.Equal(t, model.RoleAdmin, body.UserRole)

	// No token at all short-circuits before the role check.
	anonymous := env.doAuthed(t, http.MethodGet, "/auth/admin-only", nil, "")
	require.Equal(t, http.StatusUnauthorized, anonymous.StatusCode)
}
