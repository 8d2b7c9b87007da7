package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/hiretrack/internal/model"
)

// RecordServiceInterface は候補者レコードハンドラーが必要とするサービスインターフェース。
type RecordServiceInterface interface {
	Lookup(ctx context.Context, email string) (*model.Record, error)
	Create(ctx context.Context, email string, patch model.RecordPatch) (*model.Record, error)
	Update(ctx context.Context, email string, patch model.RecordPatch) (*model.Record, error)
}

// RecordHandler は候補者レコードのHTTPハンドラー。
type RecordHandler struct {
	service RecordServiceInterface
}

// NewRecordHandler はRecordHandlerを生成する。
func NewRecordHandler(service RecordServiceInterface) *RecordHandler {
	return &RecordHandler{service: service}
}

// recordUpdatedResponse は更新成功時のレスポンス。
type recordUpdatedResponse struct {
	Message string        `json:"message"`
	Record  *model.Record `json:"record"`
}

// GetRecord はメールアドレスで候補者レコードを取得する。
// GET /api/record/{email}
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Lookup(r.Context(), emailParam(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// CreateRecord は候補者レコードを作成する。メールアドレスはボディのemailを使用する。
// POST /api/record
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var patch model.RecordPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if _, err := h.service.Create(r.Context(), patch.Email(), patch); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Record added"})
}

// UpdateRecord は候補者レコードにボディの項目をマージする。
// PUT /api/record/{email}, PATCH /api/record/{email}
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var patch model.RecordPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		handleServiceError(w, r, err)
		return
	}

	rec, err := h.service.Update(r.Context(), emailParam(r), patch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordUpdatedResponse{Message: "Record updated", Record: rec})
}

// emailParam はURLパスのemailパラメータをデコードして返す。
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}
