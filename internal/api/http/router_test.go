package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anna-paula-dante/employee-registration/internal/api/http/handlers"
	"github.com/anna-paula-dante/employee-registration/internal/auth"
	"github.com/anna-paula-dante/employee-registration/internal/config"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/events"
	"github.com/anna-paula-dante/employee-registration/internal/observability"
	"github.com/anna-paula-dante/employee-registration/internal/repository"
	"github.com/anna-paula-dante/employee-registration/internal/service"
)

const (
	adminEmail    = "admin@company.com"
	adminPassword = "Admin@123"
)

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

type testServer struct {
	app    *fiber.App
	cfg    config.Config
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App: config.AppConfig{Name: "employee-registration", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:             "router-test-secret",
			Issuer:                "people-manager",
			Audience:              "people-manager-clients",
			AccessTokenTTLMinutes: 120,
			BcryptCost:            bcrypt.MinCost,
		},
		Admin: config.AdminConfig{
			FirstName:      "Admin",
			LastName:       "Director",
			Email:          adminEmail,
			DocumentNumber: "00000000000",
			BirthDate:      time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
			Password:       adminPassword,
		},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	repo := repository.NewMemoryEmployeeRepository()
	dispatcher := events.NewInMemoryDispatcher()
	employeeService := service.NewEmployeeService(cfg, service.EmployeeDependencies{
		EmployeeRepo: repo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	authService := service.NewAuthService(cfg, service.AuthDependencies{EmployeeRepo: repo})
	_, err := employeeService.SeedDirector(context.Background(), cfg.Admin)
	require.NoError(t, err)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), &memoryRevocations{revoked: map[string]time.Time{}})

	app := fiber.New()
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil),
		Auth:           handlers.NewAuthHandler(authService, authMiddleware),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	return &testServer{app: app, cfg: cfg, tokens: authService.TokenManager()}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (s *testServer) login(t *testing.T, identifier, password string) string {
	t.Helper()
	resp, body := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"emailOrDocument": identifier,
		"password":        password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	return body["access_token"].(string)
}

func employeeBody(email, document, role string, birthDate time.Time) fiber.Map {
	return fiber.Map{
		"firstName":      "Maria",
		"lastName":       "Souza",
		"email":          email,
		"documentNumber": document,
		"birthDate":      birthDate.Format("2006-01-02"),
		"password":       "Secret@123",
		"role":           role,
		"phones":         []string{"11 90000-0001", "11 90000-0002"},
	}
}

func yearsAgo(n int) time.Time {
	return time.Now().UTC().AddDate(-n, 0, -1)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"emailOrDocument": adminEmail,
		"password":        adminPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer", body["token_type"])
	assert.NotEmpty(t, body["expires_at"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Admin Director", user["name"])
	assert.Equal(t, adminEmail, user["email"])
	assert.Equal(t, "Director", user["role"])

	token := body["access_token"].(string)
	resp, body = s.do(t, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	claims := body["claims"].(map[string]any)
	assert.Equal(t, "Director", claims["role"])
	assert.Equal(t, user["id"], claims["sub"])
	assert.Equal(t, adminEmail, claims["email"])
	assert.Equal(t, "00000000000", claims["document"])
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{"emailOrDocument": adminEmail})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", errorCode(body))

	resp, wrong := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{"emailOrDocument": adminEmail, "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, unknown := s.do(t, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{"emailOrDocument": "ghost", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrong, unknown)
}

func TestCreateEmployee_RejectsBadTokens(t *testing.T) {
	s := newTestServer(t)

	expiredIssuer := auth.NewTokenManager(s.cfg.Auth, auth.WithClock(func() time.Time {
		return time.Now().Add(-3 * time.Hour)
	}))
	expired, _, genErr := expiredIssuer.GenerateToken(&domain.Employee{ID: uuid.NewString(), Role: domain.RoleDirector})
	require.NoError(t, genErr)

	valid := s.login(t, adminEmail, adminPassword)
	middle := len(valid) - 10
	swap := byte('A')
	if valid[middle] == 'A' {
		swap = 'B'
	}
	tampered := valid[:middle] + string(swap) + valid[middle+1:]

	for name, token := range map[string]string{"missing": "", "expired": expired, "tampered": tampered, "garbage": "not-a-jwt"} {
		t.Run(name, func(t *testing.T) {
			resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", token, employeeBody("x@example.com", "1", "Employee", yearsAgo(30)))
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "UNAUTHORIZED", errorCode(body))
		})
	}
}

func TestEmployeeScenarios(t *testing.T) {
	s := newTestServer(t)
	director := s.login(t, adminEmail, adminPassword)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, employeeBody("kid@example.com", "kid", "Employee", yearsAgo(16)))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "must be 18+", body["error"].(map[string]any)["message"])

	resp, _ = s.do(t, fiber.MethodPost, "/api/v1/employees", director, employeeBody("leader@example.com", "L-1", "Leader", yearsAgo(35)))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	leader := s.login(t, "L-1", "Secret@123")

	resp, body = s.do(t, fiber.MethodPost, "/api/v1/employees", leader, employeeBody("boss@example.com", "D-2", "Director", yearsAgo(40)))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, body = s.do(t, fiber.MethodPost, "/api/v1/employees", leader, employeeBody("emp@example.com", "E-1", "Employee", yearsAgo(25)))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, "/api/v1/employees/"+id, resp.Header.Get(fiber.HeaderLocation))

	resp, body = s.do(t, fiber.MethodPost, "/api/v1/employees", director, employeeBody("EMP@example.com", "E-9", "Employee", yearsAgo(25)))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email already registered", body["error"].(map[string]any)["message"])
}

func TestEmployeeLifecycle(t *testing.T) {
	s := newTestServer(t)
	director := s.login(t, adminEmail, adminPassword)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, employeeBody("emp@example.com", "E-1", "Employee", yearsAgo(25)))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/employees?page=1&pageSize=10&search=emp@", director, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["pageSize"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].(map[string]any)["id"])

	update := employeeBody("emp@example.com", "E-1", "Employee", yearsAgo(25))
	update["password"] = ""
	update["lastName"] = "Lima"
	update["phones"] = []string{"11 90000-0002", "11 90000-0003"}
	resp, _ = s.do(t, fiber.MethodPut, "/api/v1/employees/"+id, director, update)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/employees/"+id, director, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lima", body["lastName"])
	assert.Contains(t, body, "managerId")
	assert.ElementsMatch(t, []any{"11 90000-0002", "11 90000-0003"}, body["phones"])

	s.login(t, "E-1", "Secret@123")

	resp, _ = s.do(t, fiber.MethodDelete, "/api/v1/employees/"+id, director, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/employees/"+id, director, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	resp, _ = s.do(t, fiber.MethodPut, "/api/v1/employees/"+id, director, update)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodDelete, "/api/v1/employees/not-a-uuid", director, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEmployeeRequestShape(t *testing.T) {
	s := newTestServer(t)
	director := s.login(t, adminEmail, adminPassword)

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/employees", strings.NewReader("{"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+director)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid email", func(t *testing.T) {
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, employeeBody("not-an-email", "1", "Employee", yearsAgo(30)))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	})

	t.Run("unknown role", func(t *testing.T) {
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, employeeBody("a@example.com", "1", "Overlord", yearsAgo(30)))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid role", body["error"].(map[string]any)["message"])
	})

	t.Run("role by ordinal", func(t *testing.T) {
		in := employeeBody("ordinal@example.com", "ORD", "", yearsAgo(30))
		in["role"] = 1
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, in)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		_, detail := s.do(t, fiber.MethodGet, "/api/v1/employees/"+body["id"].(string), director, nil)
		assert.Equal(t, "Leader", detail["role"])
	})

	t.Run("rfc3339 birth date", func(t *testing.T) {
		in := employeeBody("rfc@example.com", "RFC", "Employee", yearsAgo(30))
		in["birthDate"] = yearsAgo(30).Format(time.RFC3339)
		resp, _ := s.do(t, fiber.MethodPost, "/api/v1/employees", director, in)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	})

	t.Run("unknown manager", func(t *testing.T) {
		in := employeeBody("m@example.com", "M", "Employee", yearsAgo(30))
		in["managerId"] = uuid.NewString()
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, in)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "manager not found", body["error"].(map[string]any)["message"])
	})

	t.Run("single phone", func(t *testing.T) {
		in := employeeBody("p@example.com", "P", "Employee", yearsAgo(30))
		in["phones"] = []string{"1"}
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/employees", director, in)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "at least two phones required", body["error"].(map[string]any)["message"])
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, adminEmail, adminPassword)

	resp, _ := s.do(t, fiber.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = s.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	resp, body = s.do(t, fiber.MethodGet, "/does-not-exist", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	metricsResp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "http_requests_total")
}
