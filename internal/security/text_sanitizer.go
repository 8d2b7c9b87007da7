// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は候補者レコードやサインアップ情報の自由記述項目から
// HTMLを除去し、プレーンテキストとして保存できるようにする。
// bluemondayのStrictPolicyを使用し、すべてのタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は自由記述テキストのサニタイズ機能のインターフェース。
type TextSanitizer interface {
	Sanitize(raw string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はbluemondayのStrictPolicyを使用するTextSanitizerを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses はサニタイズを繰り返す上限回数。
// 文字実体で多重にエンコードされたタグは1回の処理ごとに1段階ずつ復元される。
const maxSanitizePasses = 8

// unsafeRunes は収束しなかった入力から取り除く文字。
var unsafeRunes = strings.NewReplacer("<", "", ">", "", "&", "")

// Sanitize はタグを除去し、bluemondayがエスケープした文字実体を元に戻す。
// 文字実体を戻した結果に新たなタグが現れなくなるまで繰り返すため、
// 出力はタグを含まず、再度サニタイズしても変化しない。
// 保存値はプレーンテキストであり、表示側でエスケープされる。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	current := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := s.pass(current)
		if next == current {
			return current
		}
		current = next
	}

	// 上限回数で収束しない入力は、マークアップを構成し得る文字を除去する
	return s.pass(unsafeRunes.Replace(current))
}

func (s *textSanitizer) pass(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
