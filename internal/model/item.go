// Package model はドメインモデルを定義する。
package model

import "time"

// Item は外部ソースから収集したコンテンツを表す。
// (source, external_id) が自然キーであり、全ユーザー間で共有される。
type Item struct {
	ID              string
	Source          string
	ExternalID      string
	Title           string
	TitleTranslated string   // 要約APIによる翻訳タイトル。未要約の場合は空文字列。
	URL             string
	Summary         string   // 要約APIによるサマリー。未要約の場合は空文字列。
	Tags            []string // 要約APIによるタグ。未要約の場合はnil。
	CollectedAt     time.Time
}

// Enriched は要約APIによるエンリッチが完了しているかを返す。
func (i *Item) Enriched() bool {
	return i.Summary != ""
}

// CollectedRecord はコレクターが取得した未保存のアイテムを表す。
// 収集後にItemServiceへ渡され、(source, external_id)で重複排除される。
type CollectedRecord struct {
	Source     string
	ExternalID string
	Title      string
	URL        string
}

// ReviewStatus はユーザーごとのアイテムのレビュー状態を表す。
type ReviewStatus string

const (
	// StatusNew は未レビューの状態。
	StatusNew ReviewStatus = "new"
	// StatusLiked はlikeレビュー済みの状態。
	StatusLiked ReviewStatus = "liked"
	// StatusSkipped はskipレビュー済みの状態。
	StatusSkipped ReviewStatus = "skipped"
	// StatusExpired は期限切れで自動遷移した状態。
	StatusExpired ReviewStatus = "expired"
)

// validStatuses は有効なレビュー状態のセット。
var validStatuses = map[ReviewStatus]bool{
	StatusNew:     true,
	StatusLiked:   true,
	StatusSkipped: true,
	StatusExpired: true,
}

// IsValid は有効なレビュー状態かどうかを返す。
func (s ReviewStatus) IsValid() bool {
	return validStatuses[s]
}

// ReviewAction はユーザーのレビュー操作を表す。
type ReviewAction string

const (
	// ActionLike はアイテムをlikeする操作。
	ActionLike ReviewAction = "like"
	// ActionSkip はアイテムをskipする操作。
	ActionSkip ReviewAction = "skip"
)

// TerminalStatus はレビュー操作に対応する終端状態を返す。
// 未知の操作の場合は2番目の戻り値がfalseになる。
func (a ReviewAction) TerminalStatus() (ReviewStatus, bool) {
	switch a {
	case ActionLike:
		return StatusLiked, true
	case ActionSkip:
		return StatusSkipped, true
	default:
		return "", false
	}
}

// UserItemStatus はユーザーごとのアイテムのレビュー状態レコードを表す。
// (user_uuid, item_id) が複合一意キーであり、同一ペアのレコードは常に1行のみ存在する。
type UserItemStatus struct {
	ID         string
	UserUUID   string
	ItemID     string
	Status     ReviewStatus
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ItemWithStatus はアイテムとユーザーごとのレビュー状態を結合したモデル。
// user_item_statusesテーブルとJOINして取得される。
type ItemWithStatus struct {
	Item
	Status     ReviewStatus
	ReviewedAt *time.Time
}

// SaveResult はsaveItemsの実行結果を表す。
// Inserted + Skipped == Total が常に成立する。
type SaveResult struct {
	Total    int
	Inserted int
	Skipped  int
}

// StatusScore はレビュー状態がタグスコアに与える寄与を返す。
// liked=+1、skipped=-1、それ以外（new/expired/未同期）は0。
func StatusScore(s ReviewStatus) int {
	switch s {
	case StatusLiked:
		return 1
	case StatusSkipped:
		return -1
	default:
		return 0
	}
}

// ScoreDelta は状態遷移がタグスコアに適用すべき差分を返す。
// 同一状態への再レビューは0（冪等）、liked→skippedなどの訂正は
// 前回の寄与の打ち消しと新しい寄与の合算（±2）になる。
func ScoreDelta(prev, next ReviewStatus) int {
	return StatusScore(next) - StatusScore(prev)
}
