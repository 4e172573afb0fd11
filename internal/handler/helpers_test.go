package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/form"
	"github.com/dafibh/paydesk/paydesk-client/internal/middleware"
	"github.com/dafibh/paydesk/paydesk-client/internal/service"
	"github.com/dafibh/paydesk/paydesk-client/internal/testutil"
	"github.com/dafibh/paydesk/paydesk-client/internal/websocket"
	"github.com/labstack/echo/v4"
)

var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

type testServer struct {
	e       *echo.Echo
	svc     *service.FormService
	backend *testutil.MockBackend
	store   *testutil.MockSessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	backend := testutil.NewMockBackend()
	backend.AddUser("alice", "secret", "tok-alice")
	backend.AddUser("bob", "hunter2", "tok-bob")
	backend.Outstanding = domain.OutstandingBills{
		"Acme":   {"bill1", "bill2"},
		"Globex": {"g1"},
	}
	store := testutil.NewMockSessionStore()

	svc := service.NewFormService(backend, store)
	svc.SetClock(func() time.Time { return testNow })

	limiter := middleware.NewRateLimiter(0.01, 3)
	t.Cleanup(limiter.Stop)

	e := echo.New()
	RegisterRoutes(e, svc, limiter,
		NewSessionHandler(svc),
		NewFormHandler(svc),
		NewWebSocketHandler(websocket.NewHub(), svc, testAllowedOrigins),
	)

	return &testServer{e: e, svc: svc, backend: backend, store: store}
}

// do sends a request through the router and returns the recorder
func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// mustDo sends a request and fails the test unless it returns 200
func (s *testServer) mustDo(t *testing.T, method, path, body string) form.View {
	t.Helper()
	rec := s.do(method, path, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s: expected status 200, got %d: %s", method, path, rec.Code, rec.Body.String())
	}
	return decodeView(t, rec)
}

func (s *testServer) login(t *testing.T) form.View {
	t.Helper()
	return s.mustDo(t, http.MethodPost, "/api/v1/session/login", `{"user":"alice","password":"secret"}`)
}

// allocating logs in and fills a valid Acme header declaring 1000
func (s *testServer) allocating(t *testing.T) form.View {
	t.Helper()
	s.login(t)
	s.mustDo(t, http.MethodPut, "/api/v1/form/header/party", `{"value":"Acme"}`)
	s.mustDo(t, http.MethodPut, "/api/v1/form/header/declaredTotal", `{"value":"1000"}`)
	s.mustDo(t, http.MethodPut, "/api/v1/form/header/paymentDate", `{"value":"2026-10-20"}`)
	return s.mustDo(t, http.MethodPost, "/api/v1/form/proceed", "")
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) form.View {
	t.Helper()
	var view form.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return view
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	return problem
}
