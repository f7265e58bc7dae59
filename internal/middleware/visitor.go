// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

// visitorCookieName は匿名ユーザーUUIDを保持するCookie名。
const visitorCookieName = "visitor_id"

// visitorCookieMaxAge はCookieの有効期間（1年）。
const visitorCookieMaxAge = int(365 * 24 * time.Hour / time.Second)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userUUIDContextKey はリクエストコンテキストにユーザーUUIDを格納するためのキー。
var userUUIDContextKey = contextKey("user_uuid")

// UserResolver は訪問者UUIDからユーザーを解決するインターフェース。
// user.Serviceの部分集合として定義する。
type UserResolver interface {
	GetOrCreate(ctx context.Context, userUUID string) (*model.User, error)
}

// NewVisitorMiddleware はCookieから匿名ユーザーUUIDを読み取り、
// ユーザーを解決（未知なら新規作成）してコンテキストに注入するミドルウェアを返す。
// 新規作成または未知UUIDの場合はCookieを新しいUUIDで再設定する。
// ログイン不要の匿名識別であり、認証は行わない。
func NewVisitorMiddleware(resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookieUUID string
			if cookie, err := r.Cookie(visitorCookieName); err == nil {
				cookieUUID = cookie.Value
			}

			user, err := resolver.GetOrCreate(r.Context(), cookieUUID)
			if err != nil {
				slog.Error("訪問者の解決に失敗しました",
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			// UUIDが新規採番された場合はCookieを更新する
			if user.UUID != cookieUUID {
				http.SetCookie(w, &http.Cookie{
					Name:     visitorCookieName,
					Value:    user.UUID,
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), userUUIDContextKey, user.UUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserUUIDFromContext はリクエストコンテキストからユーザーUUIDを取得する。
// 訪問者ミドルウェアを通過したリクエストでのみ有効。
func UserUUIDFromContext(ctx context.Context) (string, error) {
	userUUID, ok := ctx.Value(userUUIDContextKey).(string)
	if !ok || userUUID == "" {
		return "", fmt.Errorf("user UUID not found in context")
	}
	return userUUID, nil
}

// ContextWithUserUUID はコンテキストにユーザーUUIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserUUID(ctx context.Context, userUUID string) context.Context {
	return context.WithValue(ctx, userUUIDContextKey, userUUID)
}
