package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresPreferenceRepo はPostgreSQLを使用したタグ選好スコアリポジトリ。
// スコアの書き込みはPostgresStatusRepo.Reviewのトランザクション内でのみ行われるため、
// このリポジトリは読み取り専用。
type PostgresPreferenceRepo struct {
	db *sql.DB
}

// NewPostgresPreferenceRepo はPostgresPreferenceRepoを生成する。
func NewPostgresPreferenceRepo(db *sql.DB) *PostgresPreferenceRepo {
	return &PostgresPreferenceRepo{db: db}
}

// MapByUser はユーザーがこれまでに触れた全タグのスコアをマップで返す。
// 行が存在しないタグは暗黙に0であり、マップには含まれない。
// 1度もレビューしていないユーザーには空のマップを返す。
func (r *PostgresPreferenceRepo) MapByUser(ctx context.Context, userUUID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag, score FROM preferences WHERE user_uuid = $1`,
		userUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("選好スコアの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]int)
	for rows.Next() {
		var tag string
		var score int
		if err := rows.Scan(&tag, &score); err != nil {
			return nil, fmt.Errorf("選好スコアの読み取りに失敗しました: %w", err)
		}
		prefs[tag] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("選好スコアの走査に失敗しました: %w", err)
	}

	return prefs, nil
}

// compile-time interface check
var _ PreferenceRepository = (*PostgresPreferenceRepo)(nil)
