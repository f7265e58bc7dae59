package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/trendcatch/internal/model"
)

// PostgresItemRepo はPostgreSQLを使用したアイテムリポジトリ。
type PostgresItemRepo struct {
	db *sql.DB
}

// NewPostgresItemRepo はPostgresItemRepoを生成する。
func NewPostgresItemRepo(db *sql.DB) *PostgresItemRepo {
	return &PostgresItemRepo{db: db}
}

// itemColumns はitemsテーブルのSELECT対象カラム。
const itemColumns = `id, source, external_id, title, title_translated, url, summary, tags, collected_at`

// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
func (r *PostgresItemRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("アイテムの取得に失敗しました: %w", err)
	}

	return item, nil
}

// InsertIgnoringDuplicate はアイテムを挿入する。
// (source, external_id)が既存の場合はON CONFLICT DO NOTHINGで黙ってスキップし、
// falseを返す。先に保存されたタイトル・URLが常に優先される。
func (r *PostgresItemRepo) InsertIgnoringDuplicate(ctx context.Context, rec model.CollectedRecord, collectedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO items (id, source, external_id, title, url, collected_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (source, external_id) DO NOTHING`,
		uuid.New().String(), rec.Source, rec.ExternalID, rec.Title, nullString(rec.URL), collectedAt,
	)
	if err != nil {
		return false, fmt.Errorf("アイテムの挿入に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("挿入件数の取得に失敗しました: %w", err)
	}

	return affected > 0, nil
}

// ListWithoutSummary は未要約のアイテムをcollected_at降順で取得する。
func (r *PostgresItemRepo) ListWithoutSummary(ctx context.Context, limit int) ([]*model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE summary IS NULL
		 ORDER BY collected_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("未要約アイテムの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []*model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("未要約アイテムの読み取りに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("未要約アイテムの走査に失敗しました: %w", err)
	}

	return items, nil
}

// UpdateEnrichment はアイテムの翻訳タイトル・サマリー・タグを更新する。
// タグはこの書き込み境界で1回だけJSONへシリアライズされる。
// 対象が存在しない場合はfalseを返す。
func (r *PostgresItemRepo) UpdateEnrichment(ctx context.Context, itemID, titleTranslated, summary string, tags []string) (bool, error) {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return false, fmt.Errorf("タグのシリアライズに失敗しました: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE items
		 SET title_translated = $2, summary = $3, tags = $4
		 WHERE id = $1`,
		itemID, nullString(titleTranslated), summary, string(tagsJSON),
	)
	if err != nil {
		return false, fmt.Errorf("アイテムの要約更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新件数の取得に失敗しました: %w", err)
	}

	return affected > 0, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem は1行分のアイテムをスキャンする。
// tagsカラムのJSONパースはこの境界で1回だけ行い、不正なデータは空リストとして扱う。
func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var titleTranslated, url, summary, tags sql.NullString

	err := row.Scan(
		&item.ID, &item.Source, &item.ExternalID, &item.Title,
		&titleTranslated, &url, &summary, &tags,
		&item.CollectedAt,
	)
	if err != nil {
		return nil, err
	}

	item.TitleTranslated = titleTranslated.String
	item.URL = url.String
	item.Summary = summary.String
	item.Tags = ParseTags(tags)

	return item, nil
}

// ParseTags はtagsカラムの値を[]stringへパースする。
// NULL・空文字列・不正なJSONはタグなし（nil）として扱い、エラーにはしない。
// タグの防御的パースはストア境界であるこの関数に集約する。
func ParseTags(tags sql.NullString) []string {
	if !tags.Valid || tags.String == "" {
		return nil
	}

	var parsed []string
	if err := json.Unmarshal([]byte(tags.String), &parsed); err != nil {
		slog.Debug("タグJSONのパースに失敗しました",
			slog.String("tags", tags.String),
		)
		return nil
	}
	return parsed
}

// nullString は空文字列をNULLとして扱うsql.NullStringを返す。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ ItemRepository = (*PostgresItemRepo)(nil)
