package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/rosterhub/internal/config"
	"github.com/geocoder89/rosterhub/internal/domain/user"
	"github.com/geocoder89/rosterhub/internal/health"
	apphttp "github.com/geocoder89/rosterhub/internal/http"
	"github.com/geocoder89/rosterhub/internal/observability"
	"github.com/geocoder89/rosterhub/internal/repo/memory"
	"github.com/geocoder89/rosterhub/internal/rosterevents"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		Port:            0,
		AllowedOrigins:  []string{"http://localhost:5173"},
		MaxBodyBytes:    1 << 10,
		RateLimit:       1000,
		RateLimitWindow: time.Minute,
		ListCacheTTL:    time.Minute,
		OTel:            config.OTelConfig{ServiceName: "rosterhub-test"},
	}
}

func setupTestRouter(t *testing.T, seed []user.Record) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	store := memory.NewUsersRepo(memory.WithSeed(seed))

	events := rosterevents.NewDispatcher(rosterevents.NewLogPublisher(logger), logger, prom.ObserveRosterEvent)
	t.Cleanup(func() {
		if err := events.Close(context.Background()); err != nil {
			t.Errorf("close dispatcher: %v", err)
		}
	})

	return apphttp.NewRouter(logger, testConfig(), apphttp.Deps{
		Store:    store,
		Reporter: health.NewReporter(time.Now().Add(-time.Minute)),
		Events:   events,
		Prom:     prom,
		Gatherer: reg,
	})
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_CreateOnEmptyStore(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(r, http.MethodPost, "/users", `{"name":"A","role":"Eng","location":"X"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string      `json:"message"`
		User    user.Record `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Message != "User created successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.User.ID != 1 || resp.User.Name != "A" || resp.User.Role != "Eng" || resp.User.Location != "X" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if _, err := time.Parse(time.RFC3339, resp.User.JoinedAt); err != nil {
		t.Fatalf("joinedAt %q is not ISO-8601: %v", resp.User.JoinedAt, err)
	}
}

func TestRouter_DeleteUnknownID(t *testing.T) {
	r := setupTestRouter(t, user.DefaultRoster())

	w := do(r, http.MethodDelete, "/users/999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "User with ID 999 not found" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	w = do(r, http.MethodGet, "/users", "")
	if !strings.Contains(w.Body.String(), `"count":5`) {
		t.Fatalf("roster should be unchanged, got %s", w.Body.String())
	}
}

func TestRouter_IDsAfterGaps(t *testing.T) {
	r := setupTestRouter(t, user.DefaultRoster())

	if w := do(r, http.MethodDelete, "/users/3", ""); w.Code != http.StatusOK {
		t.Fatalf("delete got %d", w.Code)
	}

	w := do(r, http.MethodPost, "/users", `{"name":"N","role":"R","location":"L"}`)
	if !strings.Contains(w.Body.String(), `"id":6`) {
		t.Fatalf("expected id 6 after gap, got %s", w.Body.String())
	}
}

func TestRouter_HealthAndProbes(t *testing.T) {
	r := setupTestRouter(t, nil)

	w := do(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health got %d", w.Code)
	}

	var status health.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Status != "ok" || status.Uptime < 60 {
		t.Fatalf("unexpected health payload %+v", status)
	}

	if w := do(r, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz got %d", w.Code)
	}
}

func TestRouter_MetricsExposeRosterSize(t *testing.T) {
	r := setupTestRouter(t, user.DefaultRoster())

	do(r, http.MethodPost, "/users", `{"name":"N","role":"R","location":"L"}`)

	w := do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "rosterhub_roster_users 6") {
		t.Fatalf("expected roster gauge at 6:\n%s", body)
	}

	// events are published in the background
	const published = `rosterhub_roster_events_total{result="published",type="user.created"} 1`
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(body, published) {
		if time.Now().After(deadline) {
			t.Fatalf("expected one published create event:\n%s", body)
		}
		time.Sleep(10 * time.Millisecond)
		body = do(r, http.MethodGet, "/metrics", "").Body.String()
	}
}

func TestRouter_RejectsNonJSONCreate(t *testing.T) {
	r := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("name=A"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got %d, want 415", w.Code)
	}
}

func TestRouter_RejectsOversizedBody(t *testing.T) {
	r := setupTestRouter(t, nil)

	body := `{"name":"` + strings.Repeat("a", 2048) + `","role":"R","location":"L"}`
	w := do(r, http.MethodPost, "/users", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "body_too_large") {
		t.Fatalf("expected body_too_large detail, got %s", w.Body.String())
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/users/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Fatalf("DELETE not allowed by CORS: %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}
