package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hitoshi/trendcatch/internal/model"
)

const (
	// hnSource はHacker Newsコレクターのソース識別子。
	hnSource = "hackernews"
	// hnTopStoriesURL はトップストーリーID一覧のエンドポイント。
	hnTopStoriesURL = "https://hacker-news.firebaseio.com/v0/topstories.json"
	// hnItemURLFormat は個別アイテム取得エンドポイントのフォーマット。
	hnItemURLFormat = "https://hacker-news.firebaseio.com/v0/item/%d.json"
	// hnDiscussionURLFormat はURLを持たないストーリー（Ask HN等）の代替リンク。
	hnDiscussionURLFormat = "https://news.ycombinator.com/item?id=%d"
)

// hnItem はHacker News APIのアイテムレスポンス。
type hnItem struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HackerNewsCollector はHacker Newsのトップストーリーを収集する。
type HackerNewsCollector struct {
	client *http.Client
}

// NewHackerNewsCollector はHackerNewsCollectorの新しいインスタンスを生成する。
func NewHackerNewsCollector(client *http.Client) *HackerNewsCollector {
	return &HackerNewsCollector{client: client}
}

// Source はソース識別子を返す。
func (c *HackerNewsCollector) Source() string {
	return hnSource
}

// FetchItems はトップストーリーのID一覧を取得し、各ストーリーの詳細を
// 個別に取得して最大count件のレコードを返す。
// type="story"以外（job, poll等）はスキップする。
// 個別ストーリーの取得失敗は警告ログに留め、残りの取得を続行する。
func (c *HackerNewsCollector) FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error) {
	var ids []int
	if err := fetchJSON(ctx, c.client, hnTopStoriesURL, &ids); err != nil {
		return nil, fmt.Errorf("Hacker Newsトップストーリーの取得に失敗しました: %w", err)
	}

	records := make([]model.CollectedRecord, 0, count)
	for _, id := range ids {
		if len(records) >= count {
			break
		}

		var story hnItem
		if err := fetchJSON(ctx, c.client, fmt.Sprintf(hnItemURLFormat, id), &story); err != nil {
			slog.Warn("Hacker Newsストーリーの取得に失敗しました",
				slog.Int("story_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}

		if story.Type != "story" || story.Title == "" {
			continue
		}

		url := story.URL
		if url == "" {
			// Ask HN等の外部URLなしストーリーは議論ページへリンクする
			url = fmt.Sprintf(hnDiscussionURLFormat, story.ID)
		}

		records = append(records, model.CollectedRecord{
			Source:     hnSource,
			ExternalID: strconv.Itoa(story.ID),
			Title:      story.Title,
			URL:        url,
		})
	}

	return records, nil
}
