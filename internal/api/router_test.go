package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baharkarakas/skillstack-backend/internal/auth"
	"github.com/baharkarakas/skillstack-backend/internal/config"
	"github.com/baharkarakas/skillstack-backend/internal/logger"
	"github.com/baharkarakas/skillstack-backend/internal/models"
	"github.com/baharkarakas/skillstack-backend/internal/repository/memory"
	"github.com/baharkarakas/skillstack-backend/internal/services"
)

type testServer struct {
	h     http.Handler
	tm    *auth.TokenManager
	clock time.Time
}

func newTestServer(t *testing.T, env string) *testServer {
	t.Helper()
	ts := &testServer{clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	repos := memory.NewRepositories()
	ts.tm = auth.NewTokenManager("test-secret", "skill-stack", 0)
	svc := services.NewUserService(repos.Users, repos.AuditLogs, auth.NewHasher(bcrypt.MinCost), ts.tm, nil, nil)
	svc.SetClock(func() time.Time { return ts.clock })

	cfg := config.Config{Env: env, CORSOrigins: []string{"*"}}
	ts.h = NewRouter(cfg, logger.NewWithWriter("prod", io.Discard), svc, ts.tm)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Success bool `json:"success"`
	Data    struct {
		ID       string         `json:"id"`
		Username string         `json:"username"`
		Email    string         `json:"email"`
		Level    int            `json:"level"`
		XP       int            `json:"xp"`
		Streak   int            `json:"streak"`
		Profile  models.Profile `json:"profile"`
	} `json:"data"`
	Token string `json:"token"`
}

type errBody struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func register(t *testing.T, ts *testServer, username, email, password string) authBody {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](t, rec)
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t, "prod")

	rec := ts.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Skill Stack API is running!", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = ts.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t, "prod")
	body := register(t, ts, "alice", "a@x.com", "secret1")

	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Token)
	assert.NotEmpty(t, body.Data.ID)
	assert.Equal(t, 1, body.Data.Level)
	assert.Equal(t, 0, body.Data.XP)
	assert.Equal(t, 0, body.Data.Streak)
	assert.Equal(t, models.DefaultBio, body.Data.Profile.Bio)

	claims, err := ts.tm.Parse(body.Token)
	require.NoError(t, err)
	assert.Equal(t, body.Data.ID, claims.UserID)
}

func TestRegisterResponseHasNoHash(t *testing.T) {
	ts := newTestServer(t, "prod")
	rec := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestRegisterMissingFields(t *testing.T) {
	ts := newTestServer(t, "prod")
	rec := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "alice"}, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errBody](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, "Please provide username, email, and password", body.Error)
}

func TestRegisterMalformedJSON(t *testing.T) {
	ts := newTestServer(t, "prod")
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateFields(t *testing.T) {
	ts := newTestServer(t, "prod")
	register(t, ts, "alice", "a@x.com", "secret1")

	tests := []struct {
		username, email string
		wantField       string
		wantMsg         string
	}{
		{"bob", "a@x.com", "email", "Email is already taken"},
		{"alice", "b@x.com", "username", "Username is already taken"},
	}
	for _, tt := range tests {
		rec := ts.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"username": tt.username, "email": tt.email, "password": "secret1",
		}, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errBody](t, rec)
		assert.Equal(t, "duplicate_field", body.Code)
		assert.Equal(t, tt.wantMsg, body.Error)
		assert.JSONEq(t, `{"field":"`+tt.wantField+`"}`, string(body.Details))
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t, "dev")
	register(t, ts, "alice", "a@x.com", "secret1")

	unknown := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "secret1"}, "")
	wrong := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "wrong-pass"}, "")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "Invalid email or password", decode[errBody](t, wrong).Error)
}

func TestLoginMissingFields(t *testing.T) {
	ts := newTestServer(t, "prod")
	rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com"}, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide email and password", decode[errBody](t, rec).Error)
}

func TestMeEndpoint(t *testing.T) {
	ts := newTestServer(t, "prod")
	reg := register(t, ts, "alice", "a@x.com", "secret1")

	rec := ts.do(t, http.MethodGet, "/api/auth/me", nil, reg.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[authBody](t, rec)
	assert.Equal(t, "alice", body.Data.Username)
	assert.Empty(t, body.Token)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := auth.NewTokenManager("other-secret", "skill-stack", 0)
	forged, err := other.Issue(reg.Data.ID)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodGet, "/api/auth/me", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUnknownUser(t *testing.T) {
	ts := newTestServer(t, "prod")
	token, err := ts.tm.Issue("ghost")
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	ts := newTestServer(t, "prod")
	reg := register(t, ts, "alice", "a@x.com", "secret1")

	rec := ts.do(t, http.MethodPatch, "/api/auth/me", map[string]string{"bio": "gopher"}, reg.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gopher", decode[authBody](t, rec).Data.Profile.Bio)

	rec = ts.do(t, http.MethodPatch, "/api/auth/me", map[string]string{}, reg.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the registration password still works
	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	ts := newTestServer(t, "prod")
	reg := register(t, ts, "alice", "a@x.com", "secret1")

	rec := ts.do(t, http.MethodPut, "/api/auth/me/password",
		map[string]string{"currentPassword": "nope-nope", "newPassword": "secret2"}, reg.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/auth/me/password",
		map[string]string{"currentPassword": "secret1", "newPassword": "secret2"}, reg.Token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "secret2"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, "prod")
	rec := ts.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errBody](t, rec).Code)
}
