// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxEmailLength はメールアドレスの最大文字数（RFC 5321のパス長上限）。
	MaxEmailLength = 320
	// MaxNameLength は氏名（姓・名それぞれ）の最大文字数。
	MaxNameLength = 255
)

// Credential はログイン用の資格情報を表す。
// 作成後に変更・削除されることはない。
type Credential struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User はログイン成功時に返すユーザー情報。パスワードハッシュを含まない。
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// User は資格情報からパスワードハッシュを除いたユーザー情報を返す。
func (c *Credential) User() *User {
	return &User{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
}

// NormalizeEmail はストアのキーとして使用するためにメールアドレスを正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailTooLong は正規化済みメールアドレスが保存可能な長さを超えているかを返す。
func EmailTooLong(email string) bool {
	return utf8.RuneCountInString(email) > MaxEmailLength
}
