package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"snagdef/internal/agent"
	"snagdef/internal/config"
	"snagdef/internal/event"
	"snagdef/internal/handler"
	"snagdef/internal/middleware"
	"snagdef/internal/model"
	"snagdef/internal/repository"
	"snagdef/internal/router"
	"snagdef/internal/service"
	"snagdef/internal/token"
	"snagdef/internal/websocket"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "admin123!"
)

type testEnv struct {
	server  *httptest.Server
	users   *repository.MemoryUserStore
	reports *repository.MemoryReportStore
	bus     *event.InMemoryBus
}

// newTestEnv wires the full stack against in-memory stores, seeds the admin
// account, and serves it over httptest.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := repository.NewMemoryUserStore()
	reports := repository.NewMemoryReportStore()
	codec := token.NewCodec("test-secret", 15*time.Minute, 24*time.Hour)
	authService := service.NewAuthService(users, codec, service.NewBcryptHasher(bcrypt.MinCost))
	require.NoError(t, authService.Seed(context.Background(), testAdminUsername, testAdminPassword))

	authMiddleware := middleware.NewAuthMiddleware(codec, users)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	agentsHandler := handler.NewAgentsHandler(
		agent.NewReconAgent(bus),
		agent.NewThreatDetectionAgent(bus),
		agent.NewIncidentResponseAgent(bus),
		agent.NewForensicsAgent(reports, bus),
	)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		JWTSecret:        "test-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Agents: agentsHandler,
	}, hub))
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, reports: reports, bus: bus}
}

func (env *testEnv) register(t *testing.T, username string, password string) (*http.Response, model.TokenPair) {
	t.Helper()

	body, err := json.Marshal(model.RegisterRequest{Username: username, Password: password})
	require.NoError(t, err)

	resp, err := http.Post(env.server.URL+"/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var pair model.TokenPair
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	}
	return resp, pair
}

func (env *testEnv) login(t *testing.T, username string, password string) (*http.Response, model.TokenPair) {
	t.Helper()

	resp, err := http.PostForm(env.server.URL+"/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var pair model.TokenPair
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	}
	return resp, pair
}

func (env *testEnv) refresh(t *testing.T, refreshToken string) (*http.Response, model.TokenPair) {
	t.Helper()

	body, err := json.Marshal(model.RefreshRequest{RefreshToken: refreshToken})
	require.NoError(t, err)

	resp, err := http.Post(env.server.URL+"/auth/refresh", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var pair model.TokenPair
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	}
	return resp, pair
}

func (env *testEnv) doAuthed(t *testing.T, method string, path string, body []byte, accessToken string) *http.Response {
	t.Helper()

	var reader io.Reader = bytes.NewReader([]byte{})
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func errorDetail(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Detail
}
