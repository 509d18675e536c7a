package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*client, *observability.Prom) {
	t.Helper()

	cfg := config.Config{
		Env:            "test",
		APIPrefix:      "/api",
		MaxBodyBytes:   1 << 20,
		AuthRateLimit:  100,
		MetricsEnabled: true,
	}
	cfg.AuthRateWindowSecs = 60
	if mutate != nil {
		mutate(&cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	hasher, err := security.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	users := memory.NewUsersRepo()
	tasks := memory.NewTasksRepo()
	projects := memory.NewProjectsRepo(tasks)

	svc, err := auth.NewService(auth.NewCredentialStore(users, hasher), auth.NewManager("test-secret", 0), log)
	require.NoError(t, err)

	prom := observability.NewProm()

	r := httpx.NewRouter(log, cfg, httpx.Deps{
		Auth:     svc,
		Gate:     svc,
		Projects: projects,
		Tasks:    tasks,
		Prom:     prom,
	})

	return &client{t: t, router: r}, prom
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), "body=%s", w.Body.String())
	}
	return w.Code, out
}

func (c *client) signUp(username string) {
	c.t.Helper()

	status, _ := c.do(http.MethodPost, "/api/users/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, status)

	status, body := c.do(http.MethodPost, "/api/users/login", map[string]any{
		"username": username,
		"password": "password123",
	})
	require.Equal(c.t, http.StatusOK, status)
	c.token = body["token"].(string)
	require.NotEmpty(c.t, c.token)
}

func errMessage(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func TestRouter_ProjectTaskFlowAndIsolation(t *testing.T) {
	alice, _ := newTestServer(t, nil)
	alice.signUp("alice")

	status, body := alice.do(http.MethodPost, "/api/projects", map[string]any{"name": "Home"})
	require.Equal(t, http.StatusCreated, status)
	projectID := int64(body["project"].(map[string]any)["id"].(float64))

	status, body = alice.do(http.MethodPost, "/api/tasks", map[string]any{"title": "Dishes", "project_id": projectID})
	require.Equal(t, http.StatusCreated, status)
	created := body["task"].(map[string]any)
	require.Equal(t, "pending", created["status"])
	require.Equal(t, "medium", created["priority"])
	taskID := int64(created["id"].(float64))

	status, body = alice.do(http.MethodGet, fmt.Sprintf("/api/tasks?project_id=%d", projectID), nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["count"])

	status, body = alice.do(http.MethodPost, "/api/tasks", map[string]any{"title": "x", "priority": "urgent"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Priority must be low, medium, or high.", errMessage(body))

	// a second user shares the router and store
	bob := &client{t: t, router: alice.router}
	bob.signUp("bob")

	status, body = bob.do(http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Project not found.", errMessage(body))

	status, _ = bob.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = bob.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskID), nil)
	require.Equal(t, http.StatusNotFound, status)

	status, body = bob.do(http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 0, body["count"])

	// deleting the project leaves its task behind
	status, _ = alice.do(http.MethodDelete, fmt.Sprintf("/api/projects/%d", projectID), nil)
	require.Equal(t, http.StatusOK, status)

	status, body = alice.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, projectID, body["task"].(map[string]any)["project_id"])
}

func TestRouter_AuthRequired(t *testing.T) {
	c, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/tasks", "/api/projects", "/api/users/profile", "/api/tasks/stats"} {
		status, _ := c.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusUnauthorized, status, path)
	}

	c.token = "not-a-jwt"
	status, _ := c.do(http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_ProfileAndLoginFailures(t *testing.T) {
	c, _ := newTestServer(t, nil)
	c.signUp("ada")

	status, body := c.do(http.MethodGet, "/api/users/profile", nil)
	require.Equal(t, http.StatusOK, status)
	u := body["user"].(map[string]any)
	require.Equal(t, "ada", u["username"])
	require.NotContains(t, u, "password_hash")
	require.NotContains(t, u, "password")

	anon := &client{t: t, router: c.router}
	status, body = anon.do(http.MethodPost, "/api/users/login", map[string]any{"username": "ada", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	wrongPassword := errMessage(body)

	status, body = anon.do(http.MethodPost, "/api/users/login", map[string]any{"username": "nobody", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, wrongPassword, errMessage(body))

	status, _ = anon.do(http.MethodPost, "/api/users/register", map[string]any{
		"username": "ada", "email": "other@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	c, prom := newTestServer(t, func(cfg *config.Config) { cfg.AuthRateLimit = 2 })

	login := map[string]any{"username": "ghost", "password": "whatever"}
	for i := 0; i < 2; i++ {
		status, _ := c.do(http.MethodPost, "/api/users/login", login)
		require.Equal(t, http.StatusUnauthorized, status)
	}

	status, body := c.do(http.MethodPost, "/api/users/login", login)
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, "rate_limited", body["error"].(map[string]any)["code"])

	families, err := prom.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "taskhub_auth_rate_limited_total" {
			found = true
		}
	}
	require.True(t, found)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	c, _ := newTestServer(t, nil)

	status, body := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	status, _ = c.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "taskhub_http_requests_total")
}

func TestRouter_RequiresJSONBody(t *testing.T) {
	c, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewBufferString("username=ada"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
