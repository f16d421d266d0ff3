package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/api/http/handlers"
	"github.com/spec-kit/ticket-desk/internal/auth"
	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/observability"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/repository"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
)

var epoch = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	app   *fiber.App
	clock *clock.FakeClock
	auth  *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	clk := clock.Fake(epoch)
	kv := persistence.WithPrefix(persistence.NewMemoryKV(), "ticketApp_")
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager("test-secret", 60, clk)
	formatter := timefmt.NewFormatter(clk, time.UTC)

	authSvc := service.NewAuthService(service.AuthDependencies{
		Store:      kv,
		Identity:   service.NewMockIdentityProvider(clk, 0),
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	ticketSvc := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewTicketRepository(kv, clk, logger),
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})

	prefs := repository.NewPreferencesRepository(kv, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("ticket-desk", "test", "memory", kv, metrics),
		Users:          handlers.NewUsersHandler(authSvc, ticketSvc, formatter),
		Tickets:        handlers.NewTicketsHandler(ticketSvc, prefs, formatter),
		Dashboard:      handlers.NewDashboardHandler(ticketSvc, formatter),
		Preferences:    handlers.NewPreferencesHandler(prefs),
		Admin:          handlers.NewAdminHandler(ticketSvc, formatter),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, authSvc),
	})
	return &testServer{app: app, clock: clk, auth: authSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.c", "password": "pw"})
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body = %v", status, body)
	}
	return body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health/live", "/health/ready", "/health/metrics"} {
		if status, body := s.do(t, http.MethodGet, path, "", nil); status != http.StatusOK {
			t.Errorf("GET %s = %d %v", path, status, body)
		}
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/tickets", "", nil)
	if status != http.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("status = %d, body = %v", status, body)
	}
}

func TestLoginRejectsEmptyPassword(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.c"})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	msg := body["error"].(map[string]any)["message"]
	if msg != "Invalid credentials" {
		t.Fatalf("message = %v", msg)
	}
}

func TestTicketLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, body := s.do(t, http.MethodPost, "/tickets", token, map[string]any{
		"title": "X", "description": "Y", "priority": "Low", "category": "Bug", "assignee": "Auto-assigned",
	})
	if status != http.StatusCreated {
		t.Fatalf("create = %d %v", status, body)
	}
	created := body["data"].(map[string]any)
	if created["id"] != "TK-007" || created["status"] != "Open" {
		t.Fatalf("created = %v", created)
	}
	if created["created_display"].(map[string]any)["relative"] != "Just now" {
		t.Fatalf("created_display = %v", created["created_display"])
	}

	_, body = s.do(t, http.MethodGet, "/tickets", token, nil)
	list := body["data"].([]any)
	if len(list) != 7 || list[0].(map[string]any)["id"] != "TK-007" {
		t.Fatalf("list head = %v", list[0])
	}

	s.clock.Advance(90 * time.Minute)
	token = s.login(t)
	status, body = s.do(t, http.MethodPost, "/tickets/TK-007/comments", token, map[string]string{"content": "on it"})
	if status != http.StatusCreated {
		t.Fatalf("comment = %d %v", status, body)
	}
	comments := body["data"].(map[string]any)["comments"].([]any)
	if len(comments) != 1 || comments[0].(map[string]any)["author"] != "John Doe" {
		t.Fatalf("comments = %v", comments)
	}

	_, body = s.do(t, http.MethodGet, "/tickets/TK-007", token, nil)
	if rel := body["data"].(map[string]any)["created_display"].(map[string]any)["relative"]; rel != "1 hour ago" {
		t.Fatalf("relative = %v", rel)
	}

	status, body = s.do(t, http.MethodPatch, "/tickets/TK-007", token, map[string]string{"status": "Resolved"})
	if status != http.StatusOK || body["data"].(map[string]any)["status"] != "Resolved" {
		t.Fatalf("update = %d %v", status, body)
	}

	if status, _ := s.do(t, http.MethodDelete, "/tickets/TK-007", token, nil); status != http.StatusNoContent {
		t.Fatalf("delete = %d", status)
	}
	status, body = s.do(t, http.MethodGet, "/tickets/TK-007", token, nil)
	if status != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("get deleted = %d %v", status, body)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	status, body := s.do(t, http.MethodPost, "/tickets", token, map[string]any{"title": "only a title"})
	if status != http.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("status = %d %v", status, body)
	}
}

func TestListTicketsFilters(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	_, body := s.do(t, http.MethodGet, "/tickets?tab=inprogress&sort=id&order=desc", token, nil)
	list := body["data"].([]any)
	if len(list) != 2 || list[0].(map[string]any)["id"] != "TK-005" {
		t.Fatalf("list = %v", list)
	}

	status, _ := s.do(t, http.MethodGet, "/tickets?tab=closed", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad tab status = %d", status)
	}
}

func TestDashboardAndReports(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	_, body := s.do(t, http.MethodGet, "/dashboard", token, nil)
	data := body["data"].(map[string]any)
	if data["stats"].(map[string]any)["total"] != float64(6) || len(data["recent"].([]any)) != 3 {
		t.Fatalf("dashboard = %v", data)
	}

	_, body = s.do(t, http.MethodGet, "/reports", token, nil)
	if body["data"].(map[string]any)["openHighPriority"] != float64(1) {
		t.Fatalf("reports = %v", body)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	if status, _ := s.do(t, http.MethodGet, "/auth/session", token, nil); status != http.StatusOK {
		t.Fatalf("session status = %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/auth/logout", token, nil); status != http.StatusNoContent {
		t.Fatalf("logout status = %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/auth/session", token, nil); status != http.StatusUnauthorized {
		t.Fatalf("session after logout = %d", status)
	}
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	status, body := s.do(t, http.MethodPatch, "/profile", token, map[string]string{"name": "Emma Frost"})
	if status != http.StatusOK || body["data"].(map[string]any)["name"] != "Emma Frost" {
		t.Fatalf("update profile = %d %v", status, body)
	}

	_, body = s.do(t, http.MethodGet, "/profile", token, nil)
	data := body["data"].(map[string]any)
	if len(data["assigned"].([]any)) != 1 || data["tickets_resolved"] != float64(1) {
		t.Fatalf("profile = %v", data)
	}
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	_, body := s.do(t, http.MethodGet, "/preferences/activeTab", token, nil)
	if body["data"].(map[string]any)["value"] != "all" {
		t.Fatalf("default = %v", body)
	}
	status, body := s.do(t, http.MethodPut, "/preferences/activeTab", token, "resolved")
	if status != http.StatusOK || body["data"].(map[string]any)["value"] != "resolved" {
		t.Fatalf("put = %d %v", status, body)
	}
	if status, _ := s.do(t, http.MethodPut, "/preferences/activeTab", token, "closed"); status != http.StatusBadRequest {
		t.Fatalf("invalid tab status = %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/preferences/theme", token, nil); status != http.StatusNotFound {
		t.Fatalf("unknown key status = %d", status)
	}
	_, body = s.do(t, http.MethodDelete, "/preferences/activeTab", token, nil)
	if body["data"].(map[string]any)["value"] != "all" {
		t.Fatalf("reset = %v", body)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Ada", "email": "ada@x.io", "password": "pw"})
	if status != http.StatusCreated {
		t.Fatalf("register = %d %v", status, body)
	}
	userToken := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	if status, _ := s.do(t, http.MethodPost, "/admin/tickets/clear", userToken, nil); status != http.StatusForbidden {
		t.Fatalf("user clear status = %d", status)
	}

	adminToken := s.login(t)
	if status, _ := s.do(t, http.MethodPost, "/admin/tickets/clear", adminToken, nil); status != http.StatusOK {
		t.Fatalf("admin clear status = %d", status)
	}
	_, body = s.do(t, http.MethodGet, "/tickets", adminToken, nil)
	if n := len(body["data"].([]any)); n != 0 {
		t.Fatalf("tickets after clear = %d", n)
	}
	_, body = s.do(t, http.MethodPost, "/admin/tickets/reset", adminToken, nil)
	if n := len(body["data"].([]any)); n != 6 {
		t.Fatalf("tickets after reset = %d", n)
	}
}

func TestProfileUpdateCannotChangeRole(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Ada", "email": "ada@x.io", "password": "pw"})
	if status != http.StatusCreated {
		t.Fatalf("register = %d %v", status, body)
	}
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	status, body = s.do(t, http.MethodPatch, "/profile", token, map[string]string{"name": "Ada L", "role": "Admin"})
	if status != http.StatusOK {
		t.Fatalf("update profile = %d %v", status, body)
	}
	user := body["data"].(map[string]any)
	if user["name"] != "Ada L" || user["role"] != "User" {
		t.Fatalf("profile = %v", user)
	}
	if status, _ := s.do(t, http.MethodPost, "/admin/tickets/clear", token, nil); status != http.StatusForbidden {
		t.Fatalf("clear after role edit = %d, want 403", status)
	}
}

func TestListTicketsUsesSavedSearchAndTab(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	ids := func(path string) []string {
		t.Helper()
		status, body := s.do(t, http.MethodGet, path, token, nil)
		if status != http.StatusOK {
			t.Fatalf("GET %s = %d %v", path, status, body)
		}
		var out []string
		for _, item := range body["data"].([]any) {
			out = append(out, item.(map[string]any)["id"].(string))
		}
		return out
	}

	if status, _ := s.do(t, http.MethodPut, "/preferences/activeTab", token, "open"); status != http.StatusOK {
		t.Fatalf("save tab = %d", status)
	}
	if got := ids("/tickets"); len(got) != 3 {
		t.Fatalf("saved tab open: %v", got)
	}
	if got := ids("/tickets?tab=all"); len(got) != 6 {
		t.Fatalf("explicit tab overrides saved: %v", got)
	}

	if status, _ := s.do(t, http.MethodPut, "/preferences/search", token, "database"); status != http.StatusOK {
		t.Fatalf("save search = %d", status)
	}
	if got := ids("/tickets"); len(got) != 1 || got[0] != "TK-006" {
		t.Fatalf("saved search and tab: %v", got)
	}
	if got := ids("/tickets?search=&tab=all"); len(got) != 6 {
		t.Fatalf("empty search clears saved one: %v", got)
	}
}
