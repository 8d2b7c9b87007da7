package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/hiretrack/internal/model"
)

func newLimitedHandler(t *testing.T, cfg RateLimiterConfig) (http.Handler, *RateLimiter) {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, rl
}

func requestFrom(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestAuthRateLimit_AllowsRequestsWithinLimit(t *testing.T) {
	handler, _ := newLimitedHandler(t, RateLimiterConfig{
		AuthRate:        2,
		AuthBurst:       5,
		CleanupInterval: time.Minute,
	})

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1234"))

		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestAuthRateLimit_Returns429WhenLimitExceeded(t *testing.T) {
	handler, _ := newLimitedHandler(t, RateLimiterConfig{
		AuthRate:        1,
		AuthBurst:       2,
		CleanupInterval: time.Minute,
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1234"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	// 3回目はレート制限に引っかかる
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:1234"))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestAuthRateLimit_RetryAfterHeader(t *testing.T) {
	handler, _ := newLimitedHandler(t, AuthRateLimiterConfig(1))

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.1:1234"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:1234"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	retrySeconds, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After should be a number, got %q", w.Header().Get("Retry-After"))
	}
	// 1 req/min なので1トークン補充まで60秒
	if retrySeconds != 60 {
		t.Errorf("Retry-After = %d, want 60", retrySeconds)
	}
}

func TestAuthRateLimit_IsolatesClients(t *testing.T) {
	handler, rl := newLimitedHandler(t, RateLimiterConfig{
		AuthRate:        1,
		AuthBurst:       1,
		CleanupInterval: time.Minute,
	})

	wA := httptest.NewRecorder()
	handler.ServeHTTP(wA, requestFrom("192.0.2.1:1000"))
	wA2 := httptest.NewRecorder()
	handler.ServeHTTP(wA2, requestFrom("192.0.2.1:2000"))

	if wA.Code != http.StatusOK {
		t.Errorf("client A first request: status = %d, want %d", wA.Code, http.StatusOK)
	}
	// ポートが異なっても同一IPとして扱う
	if wA2.Code != http.StatusTooManyRequests {
		t.Errorf("client A second request: status = %d, want %d", wA2.Code, http.StatusTooManyRequests)
	}

	wB := httptest.NewRecorder()
	handler.ServeHTTP(wB, requestFrom("198.51.100.7:1000"))
	if wB.Code != http.StatusOK {
		t.Errorf("client B first request: status = %d, want %d", wB.Code, http.StatusOK)
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount = %d, want 2", got)
	}
}

func TestAuthRateLimit_429ResponseIsUnifiedJSON(t *testing.T) {
	handler, _ := newLimitedHandler(t, RateLimiterConfig{
		AuthRate:        1,
		AuthBurst:       1,
		CleanupInterval: time.Minute,
	})

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.1:1234"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.1:1234"))

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != model.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimited)
	}
	if body.Message == "" || body.Action == "" {
		t.Errorf("message and action should be set: %+v", body)
	}
}

func TestRateLimiter_CleanupRemovesIdleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		AuthRate:        1,
		AuthBurst:       1,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.getOrCreateLimiter("192.0.2.1")
	rl.getOrCreateLimiter("192.0.2.2")

	rl.cleanup(time.Now().Add(time.Hour))
	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("entries within TTL should be kept, count = %d", got)
	}

	rl.cleanup(time.Now().Add(3 * time.Hour))
	if got := rl.LimiterCount(); got != 0 {
		t.Errorf("idle entries should be removed, count = %d", got)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
