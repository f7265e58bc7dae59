package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByUUID は指定UUIDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	user := &model.User{}
	var email sql.NullString
	var lastSeenAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT uuid, email, tier, created_at, last_seen_at FROM users WHERE uuid = $1`,
		uuid,
	).Scan(&user.UUID, &email, &user.Tier, &user.CreatedAt, &lastSeenAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by UUID: %w", err)
	}

	user.Email = email.String
	if lastSeenAt.Valid {
		user.LastSeenAt = &lastSeenAt.Time
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (uuid, email, tier, created_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.UUID, nullString(user.Email), string(user.Tier), user.CreatedAt, user.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// TouchLastSeen はユーザーの最終アクセス日時を更新する。
func (r *PostgresUserRepo) TouchLastSeen(ctx context.Context, uuid string, seenAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_seen_at = $2 WHERE uuid = $1`,
		uuid, seenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update last_seen_at: %w", err)
	}

	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
