// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, record, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeRateLimited        = "RATE_LIMITED"
)

// NewInvalidInputError は必須項目の欠落や不正値のエラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  reason,
		Category: "validation",
		Action:   "Check the submitted fields and try again.",
	}
}

// NewEmailExistsError はサインアップ時のメールアドレス重複エラーを生成する。
func NewEmailExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "Email already exists",
		Category: "auth",
		Action:   "Log in with this email or sign up with another one.",
	}
}

// NewRecordExistsError は候補者レコードの重複エラーを生成する。
func NewRecordExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "Record with this email already exists",
		Category: "record",
		Action:   "Open the existing record and update it instead.",
	}
}

// NewRecordNotFoundError は候補者レコードが見つからない場合のエラーを生成する。
func NewRecordNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  "Record not found",
		Category: "record",
		Action:   "Check the candidate email or create a new record.",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "Check your email and password.",
	}
}

// NewStoreUnavailableError は永続化層の障害を表すエラーを生成する。
// 詳細はログのみに記録し、呼び出し元には一般的なメッセージを返す。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "Internal server error",
		Category: "system",
		Action:   "Please wait and try again later.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// ErrorCode はerrに含まれるAPIErrorのコードを返す。
// APIErrorを含まない場合はErrCodeStoreUnavailableを返す。
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrCodeStoreUnavailable
}
