package handler

import "net/http"

// OptionsProvider はフォームの選択肢を提供するインターフェース。
type OptionsProvider interface {
	All() map[string][]string
}

// OptionsHandler は選択肢カタログを返すHTTPハンドラー。
type OptionsHandler struct {
	options OptionsProvider
}

// NewOptionsHandler はOptionsHandlerを生成する。
func NewOptionsHandler(options OptionsProvider) *OptionsHandler {
	return &OptionsHandler{options: options}
}

// GetOptions はフィールドごとの選択肢を返す。
// GET /api/options
func (h *OptionsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.options.All())
}
