package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/trendcatch/internal/model"
)

// PostgresStatusRepo はPostgreSQLを使用したレビュー状態台帳リポジトリ。
// 全クエリにuser_uuid条件を付与し、ユーザーデータ分離をこの層で強制する。
type PostgresStatusRepo struct {
	db *sql.DB
}

// NewPostgresStatusRepo はPostgresStatusRepoを生成する。
func NewPostgresStatusRepo(db *sql.DB) *PostgresStatusRepo {
	return &PostgresStatusRepo{db: db}
}

// SyncForUser はこのユーザーの台帳に存在しない全アイテムに対して
// status='new'の行を挿入し、挿入した行数を返す。
// INSERT ... SELECTとON CONFLICT DO NOTHINGの組み合わせにより、
// 同一ユーザーの並行呼び出しでも(user_uuid, item_id)の行は重複しない。
func (r *PostgresStatusRepo) SyncForUser(ctx context.Context, userUUID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO user_item_statuses (id, user_uuid, item_id, status, created_at, updated_at)
		 SELECT gen_random_uuid(), $1, i.id, 'new', now(), now()
		 FROM items i
		 WHERE NOT EXISTS (
		     SELECT 1 FROM user_item_statuses s
		     WHERE s.user_uuid = $1 AND s.item_id = i.id
		 )
		 ON CONFLICT (user_uuid, item_id) DO NOTHING`,
		userUUID,
	)
	if err != nil {
		return 0, fmt.Errorf("台帳の同期に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("同期件数の取得に失敗しました: %w", err)
	}

	return int(affected), nil
}

// ListForUser はユーザーの台帳をアイテムとJOINし、
// 指定ステータスの行をcollected_at降順でlimit件まで返す。
func (r *PostgresStatusRepo) ListForUser(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.source, i.external_id, i.title, i.title_translated, i.url, i.summary, i.tags, i.collected_at,
		        s.status, s.reviewed_at
		 FROM user_item_statuses s
		 JOIN items i ON i.id = s.item_id
		 WHERE s.user_uuid = $1 AND s.status = $2
		 ORDER BY i.collected_at DESC
		 LIMIT $3`,
		userUUID, string(status), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("台帳の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []model.ItemWithStatus
	for rows.Next() {
		var it model.ItemWithStatus
		var titleTranslated, url, summary, tags sql.NullString
		var reviewedAt sql.NullTime

		err := rows.Scan(
			&it.ID, &it.Source, &it.ExternalID, &it.Title,
			&titleTranslated, &url, &summary, &tags,
			&it.CollectedAt,
			&it.Status, &reviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("台帳行の読み取りに失敗しました: %w", err)
		}

		it.TitleTranslated = titleTranslated.String
		it.URL = url.String
		it.Summary = summary.String
		it.Tags = ParseTags(tags)
		if reviewedAt.Valid {
			it.ReviewedAt = &reviewedAt.Time
		}

		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("台帳の走査に失敗しました: %w", err)
	}

	return items, nil
}

// FindByUserAndItem はユーザーUUIDとアイテムIDで台帳の行を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresStatusRepo) FindByUserAndItem(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error) {
	state := &model.UserItemStatus{}
	var reviewedAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_uuid, item_id, status, reviewed_at, created_at, updated_at
		 FROM user_item_statuses
		 WHERE user_uuid = $1 AND item_id = $2`,
		userUUID, itemID,
	).Scan(
		&state.ID, &state.UserUUID, &state.ItemID, &state.Status,
		&reviewedAt, &state.CreatedAt, &state.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("台帳行の取得に失敗しました: %w", err)
	}

	if reviewedAt.Valid {
		state.ReviewedAt = &reviewedAt.Time
	}

	return state, nil
}

// Review は台帳の行を終端状態へUPSERTし、状態遷移に応じたタグスコア差分を
// 同一トランザクションで適用する。クラッシュ時に状態更新とスコア差分の
// どちらか一方だけが残ることはない。
//
// 遷移前の状態をFOR UPDATEで読み取り、model.ScoreDeltaで差分を決定する。
// 同一終端状態への再レビューは差分0となりスコアは変化しない（冪等）。
// 差分対象のタグも同一トランザクション内で読み取るため、
// 並行するエンリッチが挟まっても古いタグリストに差分が乗ることはない。
func (r *PostgresStatusRepo) Review(ctx context.Context, userUUID, itemID string, next model.ReviewStatus, reviewedAt time.Time) (model.ReviewStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// 遷移前の状態を排他ロック付きで取得（行が無ければnew相当として扱う）
	prev := model.StatusNew
	var prevStr string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM user_item_statuses
		 WHERE user_uuid = $1 AND item_id = $2
		 FOR UPDATE`,
		userUUID, itemID,
	).Scan(&prevStr)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("遷移前状態の取得に失敗しました: %w", err)
	}
	if err == nil {
		prev = model.ReviewStatus(prevStr)
	}

	// 差分対象のタグをトランザクション内で読み取る
	var rawTags sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT tags FROM items WHERE id = $1`,
		itemID,
	).Scan(&rawTags)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("レビュー対象のアイテムが存在しません: %s", itemID)
	}
	if err != nil {
		return "", fmt.Errorf("アイテムタグの取得に失敗しました: %w", err)
	}
	tags := ParseTags(rawTags)

	// 台帳の行を終端状態へUPSERT（同期前のレビューでは行を直接作成する）
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_item_statuses (id, user_uuid, item_id, status, reviewed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (user_uuid, item_id) DO UPDATE SET
		     status = EXCLUDED.status,
		     reviewed_at = EXCLUDED.reviewed_at,
		     updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), userUUID, itemID, string(next), reviewedAt, reviewedAt,
	)
	if err != nil {
		return "", fmt.Errorf("台帳行の更新に失敗しました: %w", err)
	}

	// 状態遷移に応じたスコア差分を全タグへ適用
	delta := model.ScoreDelta(prev, next)
	if delta != 0 {
		for _, tag := range tags {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO preferences (id, user_uuid, tag, score, updated_at)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (user_uuid, tag) DO UPDATE SET
				     score = preferences.score + $4,
				     updated_at = $5`,
				uuid.New().String(), userUUID, tag, delta, reviewedAt,
			)
			if err != nil {
				return "", fmt.Errorf("選好スコアの更新に失敗しました: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return prev, nil
}

// ExpireOlderThan はこのユーザーのstatus='new'の行のうち、
// アイテムのcollected_atがcutoffより古いものをexpiredへ遷移させ、件数を返す。
// レビュー済み・期限切れ済みの行は対象外。冪等な遷移であり2回目の呼び出しは0を返す。
func (r *PostgresStatusRepo) ExpireOlderThan(ctx context.Context, userUUID string, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_item_statuses s
		 SET status = 'expired', updated_at = now()
		 WHERE s.user_uuid = $1
		   AND s.status = 'new'
		   AND s.item_id IN (
		       SELECT id FROM items WHERE collected_at < $2
		   )`,
		userUUID, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("台帳の期限切れ処理に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("期限切れ件数の取得に失敗しました: %w", err)
	}

	return int(affected), nil
}

// compile-time interface check
var _ StatusRepository = (*PostgresStatusRepo)(nil)
