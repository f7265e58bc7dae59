// Package collector は外部ソースからのトレンドアイテム収集機能を提供する。
// 各コレクターは1つの外部ソースを担当し、取得したレコードを
// 共通のCollectedRecord形式へ正規化する。
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hitoshi/trendcatch/internal/model"
)

// userAgent は外部APIへのリクエストで使用するUser-Agentヘッダー。
// RedditのAPIはUser-Agent未設定のリクエストを429で拒否する。
const userAgent = "TrendCatch/1.0 (trend aggregator)"

// Collector は1つの外部ソースからアイテムを収集するインターフェース。
type Collector interface {
	// Source はこのコレクターが担当するソース識別子を返す。
	Source() string
	// FetchItems は外部ソースから最大count件のレコードを取得する。
	// 取得失敗時はエラーを返す（部分的な結果は返さない）。
	FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error)
}

// fetchJSON は指定URLへGETリクエストを送信し、レスポンスJSONをvへデコードする。
// 全コレクター共通のヘルパー。ステータス200以外はエラーを返す。
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("外部APIがステータス %d を返しました: %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return nil
}
