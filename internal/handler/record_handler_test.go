package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/hiretrack/internal/model"
)

func TestRecordHandler_GetRecord(t *testing.T) {
	svc := &mockRecordService{
		lookupFn: func(_ context.Context, email string) (*model.Record, error) {
			if email != "a@example.com" {
				t.Errorf("email = %q, want a@example.com", email)
			}
			rec := &model.Record{Email: email}
			rec.CandidateName = "Ann"
			rec.FinalStatus = "L1 Select"
			return rec, nil
		},
	}
	h := NewRecordHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/record/a%40example.com", nil)
	req = withChiURLParam(req, "email", "a%40example.com")
	w := httptest.NewRecorder()
	h.GetRecord(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if raw["candidateName"] != "Ann" || raw["finalStatus"] != "L1 Select" || raw["email"] != "a@example.com" {
		t.Errorf("record body = %v", raw)
	}
}

func TestRecordHandler_GetRecord_NotFound(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/record/x@example.com", nil), "email", "x@example.com")
	w := httptest.NewRecorder()
	h.GetRecord(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if resp := parseAPIErrorResponse(t, w); resp["message"] != "Record not found" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestRecordHandler_CreateRecord(t *testing.T) {
	var gotEmail string
	var gotPatch model.RecordPatch
	svc := &mockRecordService{
		createFn: func(_ context.Context, email string, patch model.RecordPatch) (*model.Record, error) {
			gotEmail, gotPatch = email, patch
			return &model.Record{Email: email}, nil
		},
	}
	h := NewRecordHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/record", strings.NewReader(`{"email":"A@example.com","candidateName":"Ann"}`))
	w := httptest.NewRecorder()
	h.CreateRecord(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if msg := parseMessage(t, w); msg != "Record added" {
		t.Errorf("message = %q, want %q", msg, "Record added")
	}
	if gotEmail != "A@example.com" {
		t.Errorf("email passed to service = %q", gotEmail)
	}
	if string(gotPatch["candidateName"]) != `"Ann"` {
		t.Errorf("patch = %v", gotPatch)
	}
}

func TestRecordHandler_CreateRecord_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"duplicate", `{"email":"a@example.com"}`, model.NewRecordExistsError(), http.StatusConflict, "Record with this email already exists"},
		{"missing email", `{"candidateName":"Ann"}`, model.NewInvalidInputError("Email is required"), http.StatusBadRequest, "Email is required"},
		{"not an object", `["a"]`, nil, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRecordService{
				createFn: func(context.Context, string, model.RecordPatch) (*model.Record, error) {
					return nil, tt.err
				},
			}
			h := NewRecordHandler(svc)

			w := httptest.NewRecorder()
			h.CreateRecord(w, httptest.NewRequest(http.MethodPost, "/api/record", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp := parseAPIErrorResponse(t, w); resp["message"] != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp["message"], tt.wantMsg)
			}
		})
	}
}

func TestRecordHandler_UpdateRecord(t *testing.T) {
	svc := &mockRecordService{
		updateFn: func(_ context.Context, email string, patch model.RecordPatch) (*model.Record, error) {
			rec := &model.Record{Email: email}
			rec.L2Status = "Shortlisted"
			rec.FinalStatus = "L2 Select"
			return rec, nil
		},
	}
	h := NewRecordHandler(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/record/a@example.com", strings.NewReader(`{"l2Status":"Shortlisted"}`))
	req = withChiURLParam(req, "email", "a@example.com")
	w := httptest.NewRecorder()
	h.UpdateRecord(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body struct {
		Message string        `json:"message"`
		Record  *model.Record `json:"record"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Message != "Record updated" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Record == nil || body.Record.FinalStatus != "L2 Select" {
		t.Errorf("record = %+v", body.Record)
	}
}

func TestRecordHandler_UpdateRecord_NotFound(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})

	req := httptest.NewRequest(http.MethodPut, "/api/record/x@example.com", strings.NewReader(`{}`))
	req = withChiURLParam(req, "email", "x@example.com")
	w := httptest.NewRecorder()
	h.UpdateRecord(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewInvalidInputError("x"), http.StatusBadRequest},
		{model.NewEmailExistsError(), http.StatusConflict},
		{model.NewRecordNotFoundError(), http.StatusNotFound},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewRateLimitedError(), http.StatusTooManyRequests},
		{model.NewStoreUnavailableError(), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}
