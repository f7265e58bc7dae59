package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/trendcatch/internal/model"
)

// mockUserResolver はUserResolverのモック。
type mockUserResolver struct {
	getOrCreateFn func(ctx context.Context, userUUID string) (*model.User, error)
}

func (m *mockUserResolver) GetOrCreate(ctx context.Context, userUUID string) (*model.User, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, userUUID)
	}
	return &model.User{UUID: userUUID, Tier: model.TierFree}, nil
}

// TestVisitorMiddleware_NewVisitor はCookieなしの初回訪問で新規UUIDの
// Cookieが設定されることをテストする。
func TestVisitorMiddleware_NewVisitor(t *testing.T) {
	const mintedUUID = "11111111-2222-3333-4444-555555555555"
	resolver := &mockUserResolver{
		getOrCreateFn: func(ctx context.Context, userUUID string) (*model.User, error) {
			if userUUID != "" {
				t.Errorf("GetOrCreate()に渡されたUUID = %q, want 空文字列", userUUID)
			}
			return &model.User{UUID: mintedUUID, Tier: model.TierFree}, nil
		},
	}

	var contextUUID string
	handler := NewVisitorMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextUUID, _ = UserUUIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	if contextUUID != mintedUUID {
		t.Errorf("コンテキストのUUID = %q, want %q", contextUUID, mintedUUID)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != visitorCookieName || cookie.Value != mintedUUID {
		t.Errorf("cookie = %s=%s", cookie.Name, cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("HttpOnly = false, want true")
	}
	if cookie.MaxAge != visitorCookieMaxAge {
		t.Errorf("MaxAge = %d, want %d", cookie.MaxAge, visitorCookieMaxAge)
	}
}

// TestVisitorMiddleware_ReturningVisitor は既存Cookieがそのまま使われ、
// Cookieが再設定されないことをテストする。
func TestVisitorMiddleware_ReturningVisitor(t *testing.T) {
	const existingUUID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	resolver := &mockUserResolver{
		getOrCreateFn: func(ctx context.Context, userUUID string) (*model.User, error) {
			return &model.User{UUID: userUUID, Tier: model.TierSupporter}, nil
		},
	}

	var contextUUID string
	handler := NewVisitorMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextUUID, _ = UserUUIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: existingUUID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if contextUUID != existingUUID {
		t.Errorf("コンテキストのUUID = %q, want %q", contextUUID, existingUUID)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Errorf("len(cookies) = %d, want 0（既知UUIDでは再設定しない）", len(cookies))
	}
}

// TestVisitorMiddleware_ResolverError はユーザー解決失敗時に500が返ることをテストする。
func TestVisitorMiddleware_ResolverError(t *testing.T) {
	resolver := &mockUserResolver{
		getOrCreateFn: func(ctx context.Context, userUUID string) (*model.User, error) {
			return nil, errors.New("db down")
		},
	}

	nextCalled := false
	handler := NewVisitorMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if nextCalled {
		t.Error("エラー時に後続ハンドラーが呼ばれた")
	}
}

// TestUserUUIDFromContext はコンテキストへの注入と取得をテストする。
func TestUserUUIDFromContext(t *testing.T) {
	ctx := ContextWithUserUUID(context.Background(), "some-uuid")

	got, err := UserUUIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserUUIDFromContext() error = %v", err)
	}
	if got != "some-uuid" {
		t.Errorf("got = %q, want %q", got, "some-uuid")
	}

	if _, err := UserUUIDFromContext(context.Background()); err == nil {
		t.Error("未注入コンテキストでエラーが返らない")
	}
}
