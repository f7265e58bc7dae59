// Package model はドメインモデルを定義する。
package model

import "time"

// Tier はユーザーの料金ティアを表す。
// レート制限ポリシーの選択に使用される。
type Tier string

const (
	// TierFree は無料ティア。日次クォータの対象。
	TierFree Tier = "free"
	// TierSupporter はサポーターティア。クォータ無制限。
	TierSupporter Tier = "supporter"
)

// User はサービス利用ユーザーを表す。
// 初回アクセス時に匿名ユーザーとして作成され、UUIDで識別される。
type User struct {
	UUID       string
	Email      string
	Tier       Tier
	CreatedAt  time.Time
	LastSeenAt *time.Time
}

// PreferenceScore はユーザーごとのタグ選好スコアを表す。
// (user_uuid, tag) が複合一意キー。行が存在しないタグのスコアは暗黙に0。
type PreferenceScore struct {
	UserUUID  string
	Tag       string
	Score     int
	UpdatedAt time.Time
}

// QuotaAction は日次クォータの対象となるアクションを表す。
type QuotaAction string

const (
	// QuotaCollect は収集アクション。
	QuotaCollect QuotaAction = "collect"
	// QuotaSummarize は要約アクション。
	QuotaSummarize QuotaAction = "summarize"
)

// IsValid は有効なクォータアクションかどうかを返す。
func (a QuotaAction) IsValid() bool {
	return a == QuotaCollect || a == QuotaSummarize
}

// RateLimitCounter はユーザーごとの日次アクション実行回数を表す。
// (user_uuid, date) が複合一意キー。日付が変わると行が存在しないため
// カウンタは暗黙にリセットされる。
type RateLimitCounter struct {
	UserUUID       string
	Date           string // "2006-01-02" 形式
	CollectCount   int
	SummarizeCount int
}
