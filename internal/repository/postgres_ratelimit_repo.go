package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/trendcatch/internal/model"
)

// PostgresRateLimitRepo はPostgreSQLを使用した日次クォータカウンタリポジトリ。
type PostgresRateLimitRepo struct {
	db *sql.DB
}

// NewPostgresRateLimitRepo はPostgresRateLimitRepoを生成する。
func NewPostgresRateLimitRepo(db *sql.DB) *PostgresRateLimitRepo {
	return &PostgresRateLimitRepo{db: db}
}

// FindByUserAndDate は指定日のカウンタを取得する。見つからない場合はnilを返す。
// 新しい日付の行はまだ存在しないため、日次リセットは暗黙に行われる。
func (r *PostgresRateLimitRepo) FindByUserAndDate(ctx context.Context, userUUID, date string) (*model.RateLimitCounter, error) {
	counter := &model.RateLimitCounter{}

	err := r.db.QueryRowContext(ctx,
		`SELECT user_uuid, to_char(date, 'YYYY-MM-DD'), collect_count, summarize_count
		 FROM rate_limits
		 WHERE user_uuid = $1 AND date = $2`,
		userUUID, date,
	).Scan(&counter.UserUUID, &counter.Date, &counter.CollectCount, &counter.SummarizeCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("クォータカウンタの取得に失敗しました: %w", err)
	}

	return counter, nil
}

// Increment は指定日のカウンタの該当アクション回数を1加算する。
// 行が存在しない場合はカウント1で作成する。
// UNIQUE(user_uuid, date)制約を利用したINSERT ON CONFLICTで実装する。
func (r *PostgresRateLimitRepo) Increment(ctx context.Context, userUUID, date string, action model.QuotaAction) error {
	var collectDelta, summarizeDelta int
	switch action {
	case model.QuotaCollect:
		collectDelta = 1
	case model.QuotaSummarize:
		summarizeDelta = 1
	default:
		return fmt.Errorf("unknown quota action: %s", action)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rate_limits (id, user_uuid, date, collect_count, summarize_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_uuid, date) DO UPDATE SET
		     collect_count = rate_limits.collect_count + $4,
		     summarize_count = rate_limits.summarize_count + $5`,
		uuid.New().String(), userUUID, date, collectDelta, summarizeDelta,
	)
	if err != nil {
		return fmt.Errorf("クォータカウンタの更新に失敗しました: %w", err)
	}

	return nil
}

// compile-time interface check
var _ RateLimitRepository = (*PostgresRateLimitRepo)(nil)
