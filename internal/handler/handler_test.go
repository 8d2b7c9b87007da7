package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/hiretrack/internal/auth"
	"github.com/hitoshi/hiretrack/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	signupFn func(ctx context.Context, in auth.SignupInput) error
	loginFn  func(ctx context.Context, email, password string) (*model.User, error)
}

func (m *mockAuthService) Signup(ctx context.Context, in auth.SignupInput) error {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, model.NewInvalidCredentialsError()
}

// mockRecordService はRecordServiceInterfaceのモック実装。
type mockRecordService struct {
	lookupFn func(ctx context.Context, email string) (*model.Record, error)
	createFn func(ctx context.Context, email string, patch model.RecordPatch) (*model.Record, error)
	updateFn func(ctx context.Context, email string, patch model.RecordPatch) (*model.Record, error)
}

func (m *mockRecordService) Lookup(ctx context.Context, email string) (*model.Record, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, email)
	}
	return nil, model.NewRecordNotFoundError()
}

func (m *mockRecordService) Create(ctx context.Context, email string, patch model.RecordPatch) (*model.Record, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email, patch)
	}
	return &model.Record{Email: email}, nil
}

func (m *mockRecordService) Update(ctx context.Context, email string, patch model.RecordPatch) (*model.Record, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, email, patch)
	}
	return nil, model.NewRecordNotFoundError()
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(context.Context) error { return m.err }

type staticOptions map[string][]string

func (o staticOptions) All() map[string][]string { return o }

type nopMetrics struct{}

func (nopMetrics) RecordSignup(string)                   {}
func (nopMetrics) RecordLogin(string)                    {}
func (nopMetrics) RecordRecordOperation(string, string) {}
func (nopMetrics) RecordHTTPStatus(int)                  {}
func (nopMetrics) RecordRequestLatency(time.Duration)    {}

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// parseMessage はレスポンスボディのmessageを返すヘルパー。
func parseMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body.Message
}
