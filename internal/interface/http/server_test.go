package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/course-registry/internal/application/auth"
	"github.com/campus-hub/course-registry/internal/application/directory"
	"github.com/campus-hub/course-registry/internal/domain/user"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/memory"
	"github.com/campus-hub/course-registry/internal/interface/http/handlers"
	"github.com/campus-hub/course-registry/pkg/logger"
)

type testEnv struct {
	handler      http.Handler
	adminToken   string
	studentToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	gate, err := auth.NewGate(users, memory.NewRevocationStore(), auth.Config{
		Secret:     "test-secret",
		Issuer:     "course-registry",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	dir := directory.New(memory.NewDisciplineRepository())

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	srv, err := NewServer(cfg, Dependencies{
		Directory:     dir,
		Gate:          gate,
		Logger:        logger.Nop(),
		HealthChecker: handlers.NewCompositeHealthChecker("test"),
	})
	require.NoError(t, err)

	env := &testEnv{handler: srv.Handler()}
	env.adminToken = env.register(t, gate, "admin@example.com", "1", user.RoleAdmin)
	env.studentToken = env.register(t, gate, "student@example.com", "2", user.RoleStudent)
	return env
}

func (e *testEnv) register(t *testing.T, gate *auth.Gate, email, suffix string, role user.Role) string {
	t.Helper()
	_, err := gate.Register(context.Background(), user.RegisterInput{
		Name:         "User " + suffix,
		Email:        email,
		Password:     "123123",
		Role:         role,
		CPF:          "cpf-" + suffix,
		Registration: "reg-" + suffix,
		Course:       "Computer Science",
	})
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/login", "", `{"login":"`+email+`","password":"123123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func dataString(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Data
}

type disciplineBody struct {
	Data struct {
		ID         string `json:"_id"`
		Name       string `json:"name"`
		Professor  string `json:"professor"`
		Difficulty int    `json:"difficulty"`
		Schedule   []struct {
			Start int `json:"startHourInMinutes"`
			End   int `json:"endHourInMinutes"`
			Day   int `json:"day"`
		} `json:"schedule"`
	} `json:"data"`
}

const validDiscipline = `{"name":"Algorithms","professor":"Ada","difficulty":3,
	"schedule":[{"startHourInMinutes":100,"endHourInMinutes":200,"day":2}]}`

func (e *testEnv) createDiscipline(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/disciplines", e.adminToken, validDiscipline)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body disciplineBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.ID
}

// ══════════════════════════════════════════════════════════════════════════════
// DISCIPLINES
// ══════════════════════════════════════════════════════════════════════════════

func TestCreateDiscipline_EchoesEntry(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/disciplines", env.adminToken, validDiscipline)
	require.Equal(t, http.StatusCreated, w.Code)

	var body disciplineBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.ID)
	assert.Equal(t, "Algorithms", body.Data.Name)
	require.Len(t, body.Data.Schedule, 1)
	assert.Equal(t, 100, body.Data.Schedule[0].Start)
	assert.Equal(t, 200, body.Data.Schedule[0].End)
	assert.Equal(t, 2, body.Data.Schedule[0].Day)
}

func TestCreateDiscipline_InvalidRange(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/disciplines", env.adminToken,
		`{"name":"Algorithms","professor":"Ada","difficulty":3,
		  "schedule":[{"startHourInMinutes":100,"endHourInMinutes":90,"day":2}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, dataString(t, w), "startHourInMinutes must be lower than endHourInMinutes")

	w = env.do(t, http.MethodGet, "/disciplines", env.adminToken, "")
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestCreateDiscipline_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/disciplines", env.adminToken, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/disciplines", env.adminToken, `{"name":"A","professor":"B","difficulty":"hard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDiscipline_UnknownID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/disciplines/600566dca73e1f2b2cd112f3", env.studentToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Discipline not found", dataString(t, w))
}

func TestDisciplineLifecycle(t *testing.T) {
	env := newTestEnv(t)
	id := env.createDiscipline(t)

	w := env.do(t, http.MethodGet, "/disciplines", env.studentToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = env.do(t, http.MethodPatch, "/disciplines/"+id, env.adminToken, `{"difficulty":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body disciplineBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Data.Difficulty)
	assert.Equal(t, "Algorithms", body.Data.Name)
	assert.Equal(t, "Ada", body.Data.Professor)

	w = env.do(t, http.MethodPatch, "/disciplines/"+id, env.adminToken,
		`{"schedule":[{"startHourInMinutes":700,"endHourInMinutes":650,"day":4}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/disciplines/"+id, env.adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted successfully", dataString(t, w))

	w = env.do(t, http.MethodGet, "/disciplines/"+id, env.adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/disciplines/"+id, env.adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateDiscipline_EmptyBodyUnknownID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPatch, "/disciplines/missing", env.adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Discipline not found", dataString(t, w))
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCESS
// ══════════════════════════════════════════════════════════════════════════════

func TestMutations_ForbiddenForStudent(t *testing.T) {
	env := newTestEnv(t)
	id := env.createDiscipline(t)

	w := env.do(t, http.MethodPost, "/disciplines", env.studentToken, validDiscipline)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Operation not permitted", dataString(t, w))

	w = env.do(t, http.MethodPatch, "/disciplines/"+id, env.studentToken, `{"name":"X"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/disciplines/"+id, env.studentToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/users", env.studentToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_MissingAndInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/disciplines", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token not provided", dataString(t, w))

	w = env.do(t, http.MethodGet, "/disciplines", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", dataString(t, w))
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/login", "", `{"login":"admin@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", dataString(t, w))

	w = env.do(t, http.MethodPost, "/login", "", `{"login":"admin@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/logout", env.studentToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", dataString(t, w))

	w = env.do(t, http.MethodGet, "/disciplines", env.studentToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsers_HidesPasswords(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/users", env.adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@example.com")
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONAL
// ══════════════════════════════════════════════════════════════════════════════

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/ready", "/live"} {
		w := env.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}

	w := env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gate, err := auth.NewGate(memory.NewUserRepository(), nil, auth.Config{Secret: "s", TokenTTL: time.Hour})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 2
	srv, err := NewServer(cfg, Dependencies{
		Directory: directory.New(memory.NewDisciplineRepository()),
		Gate:      gate,
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken(""))
}
