// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, content, quota, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeItemNotFound  = "ITEM_NOT_FOUND"
	ErrCodeUserNotFound  = "USER_NOT_FOUND"
	ErrCodeInvalidAction = "INVALID_ACTION"
	ErrCodeInvalidStatus = "INVALID_STATUS"
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
)

// NewItemNotFoundError はアイテム未検出エラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定されたアイテムが見つかりません: %s", itemID),
		Category: "content",
		Action:   "アイテムIDを確認してください。既に削除されている可能性があります。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "validation",
		Action:   "ページを再読み込みして新しいセッションを開始してください。",
	}
}

// NewInvalidActionError は無効なレビュー操作エラーを生成する。
func NewInvalidActionError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAction,
		Message:  fmt.Sprintf("無効な操作です: %s", action),
		Category: "validation",
		Action:   "操作には like または skip のいずれかを指定してください。",
	}
}

// NewInvalidStatusError は無効なステータスフィルタエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには new、liked、skipped、expired のいずれかを指定してください。",
	}
}

// NewQuotaExceededError は日次クォータ超過エラーを生成する。
func NewQuotaExceededError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeQuotaExceeded,
		Message:  fmt.Sprintf("本日の %s 実行回数が上限に達しました。", action),
		Category: "quota",
		Action:   "明日再度お試しいただくか、サポータープランをご検討ください。",
	}
}
