package middlewares

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(ctx *gin.Context) { ctx.Status(http.StatusOK) }

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(ctx *gin.Context) {
		id, _ := ctx.Get(CtxRequestID)
		ctx.String(http.StatusOK, id.(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	generated := w.Header().Get("X-Request-Id")
	if generated == "" || generated != w.Body.String() {
		t.Fatalf("expected generated id echoed, header=%q body=%q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("expected incoming id to be kept, got %q", w.Header().Get("X-Request-Id"))
	}
}

func TestRequestLogger_LogsRouteAndStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.DELETE("/users/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/999", nil))

	out := buf.String()
	for _, want := range []string{`"route":"/users/:id"`, `"status":404`, `"method":"DELETE"`, `"request_id"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/users", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin for unknown origin: %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight got %d, want 204", w.Code)
	}
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"*"}))
	r.GET("/health", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://front.run.app")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://front.run.app" {
		t.Fatalf("expected wildcard to allow origin, got %q", got)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/users", okHandler)
	r.GET("/users", okHandler)

	tests := []struct {
		name   string
		method string
		ct     string
		want   int
	}{
		{name: "json", method: http.MethodPost, ct: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "form", method: http.MethodPost, ct: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
		{name: "missing", method: http.MethodPost, ct: "", want: http.StatusUnsupportedMediaType},
		{name: "get_ignored", method: http.MethodGet, ct: "", want: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/users", strings.NewReader("{}"))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/users", func(ctx *gin.Context) {
		if _, err := io.ReadAll(ctx.Request.Body); err != nil {
			ctx.Status(http.StatusRequestEntityTooLarge)
			return
		}
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(strings.Repeat("x", 64))))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected oversized body to fail reading, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/health", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimiterMiddleware(KeyByIP))
	r.GET("/users", okHandler)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.RemoteAddr = "10.0.0.1:4567"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request %d got %d", i, w.Code)
		}
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}

	now = now.Add(61 * time.Second)
	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("expected new window to allow, got %d", w.Code)
	}
}
