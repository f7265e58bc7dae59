// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は外部ソースから収集したタイトルや
// 要約APIが返したサマリーをサニタイズし、XSS攻撃などの
// セキュリティリスクからユーザーを保護する。
// 収集アイテムはプレーンテキストとして表示されるため、
// bluemondayのStrictPolicyで全てのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// アイテムの保存前および要約結果の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力テキストから全てのHTMLタグを除去して返す。
	// 前後の空白も除去する。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicy（全タグ除去）を使用する。収集アイテムのタイトル・サマリーは
// プレーンテキストであり、HTMLを保持する理由がないため。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストから全てのHTMLタグを除去して返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
