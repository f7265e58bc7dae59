// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

// ItemRepository はアイテムカタログの永続化インターフェース。
// カタログは全ユーザー共有であり、(source, external_id)の自然キーで重複排除される。
type ItemRepository interface {
	// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Item, error)

	// InsertIgnoringDuplicate はアイテムを挿入する。
	// (source, external_id)が既存の場合は何もせずfalseを返す（先着優先）。
	// 挿入に成功した場合はtrueを返す。
	InsertIgnoringDuplicate(ctx context.Context, rec model.CollectedRecord, collectedAt time.Time) (bool, error)

	// ListWithoutSummary は未要約のアイテムをcollected_at降順で取得する。
	ListWithoutSummary(ctx context.Context, limit int) ([]*model.Item, error)

	// UpdateEnrichment はアイテムの翻訳タイトル・サマリー・タグを更新する。
	// 対象が存在しない場合はfalseを返す。冪等な上書きを許容する。
	UpdateEnrichment(ctx context.Context, itemID, titleTranslated, summary string, tags []string) (bool, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUUID は指定UUIDのユーザーを取得する。見つからない場合はnilを返す。
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// TouchLastSeen はユーザーの最終アクセス日時を更新する。
	TouchLastSeen(ctx context.Context, uuid string, seenAt time.Time) error
}

// StatusRepository はユーザーごとのレビュー状態台帳の永続化インターフェース。
// 全クエリにuser_uuid条件を付与し、ユーザーデータ分離をこの層で強制する。
type StatusRepository interface {
	// SyncForUser はこのユーザーの台帳に存在しない全アイテムに対して
	// status='new'の行を挿入し、挿入した行数を返す。
	// ON CONFLICT DO NOTHINGにより同一ユーザーの並行呼び出しでも行は重複しない。
	SyncForUser(ctx context.Context, userUUID string) (int, error)

	// ListForUser はユーザーの台帳をアイテムとJOINし、
	// 指定ステータスの行をcollected_at降順でlimit件まで返す。
	ListForUser(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error)

	// FindByUserAndItem はユーザーUUIDとアイテムIDで台帳の行を取得する。
	// 見つからない場合はnilを返す。
	FindByUserAndItem(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error)

	// Review は台帳の行を終端状態へUPSERTし、状態遷移に応じたタグスコア差分を
	// 同一トランザクションで適用する。部分的な更新は外部から観測されない。
	// 差分対象のタグはトランザクション内でアイテムから読み取るため、
	// 並行するエンリッチで古いタグリストに差分が乗ることはない。
	// 戻り値は遷移前の状態（行が存在しなかった場合はStatusNew）。
	Review(ctx context.Context, userUUID, itemID string, next model.ReviewStatus, reviewedAt time.Time) (model.ReviewStatus, error)

	// ExpireOlderThan はこのユーザーのstatus='new'の行のうち、
	// アイテムのcollected_atがcutoffより古いものをexpiredへ遷移させ、件数を返す。
	// レビュー済み・期限切れ済みの行は対象外。
	ExpireOlderThan(ctx context.Context, userUUID string, cutoff time.Time) (int, error)
}

// PreferenceRepository はユーザーごとのタグ選好スコアの読み取りインターフェース。
// スコアの書き込みはStatusRepository.Reviewのトランザクション内でのみ行われる。
type PreferenceRepository interface {
	// MapByUser はユーザーがこれまでに触れた全タグのスコアをマップで返す。
	// 行が存在しないタグは暗黙に0であり、マップには含まれない。
	MapByUser(ctx context.Context, userUUID string) (map[string]int, error)
}

// RateLimitRepository はユーザーごとの日次クォータカウンタの永続化インターフェース。
type RateLimitRepository interface {
	// FindByUserAndDate は指定日のカウンタを取得する。見つからない場合はnilを返す。
	FindByUserAndDate(ctx context.Context, userUUID, date string) (*model.RateLimitCounter, error)

	// Increment は指定日のカウンタの該当アクション回数を1加算する。
	// 行が存在しない場合はカウント1で作成する。
	Increment(ctx context.Context, userUUID, date string, action model.QuotaAction) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
