package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/trendcatch/internal/model"
)

const (
	// redditSource はRedditコレクターのソース識別子。
	redditSource = "reddit"
	// redditHotURLFormat はサブレディットのhot投稿一覧エンドポイント。
	redditHotURLFormat = "https://www.reddit.com/r/%s/hot.json?limit=%d"
)

// defaultSubreddits は収集対象のサブレディット。
var defaultSubreddits = []string{
	"programming",
	"webdev",
	"SideProject",
	"indiehackers",
	"MachineLearning",
}

// redditListing はReddit APIのリスティングレスポンス。
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// redditPost はReddit APIの投稿データ。
type redditPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	Stickied  bool   `json:"stickied"`
}

// RedditCollector は複数サブレディットのhot投稿を収集する。
type RedditCollector struct {
	client     *http.Client
	subreddits []string
}

// NewRedditCollector はRedditCollectorの新しいインスタンスを生成する。
func NewRedditCollector(client *http.Client) *RedditCollector {
	return &RedditCollector{
		client:     client,
		subreddits: defaultSubreddits,
	}
}

// Source はソース識別子を返す。
func (c *RedditCollector) Source() string {
	return redditSource
}

// FetchItems は各サブレディットのhot投稿を収集し、最大count件のレコードを返す。
// 件数はサブレディット間で均等に分配する。固定表示（stickied）の投稿はスキップする。
// 1つのサブレディットの取得失敗は警告ログに留め、残りの収集を続行する。
func (c *RedditCollector) FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error) {
	perSub := count / len(c.subreddits)
	if perSub < 1 {
		perSub = 1
	}

	records := make([]model.CollectedRecord, 0, count)
	for _, sub := range c.subreddits {
		// stickied分を見越して多めに取得する
		url := fmt.Sprintf(redditHotURLFormat, sub, perSub+2)

		var listing redditListing
		if err := fetchJSON(ctx, c.client, url, &listing); err != nil {
			slog.Warn("サブレディットの取得に失敗しました",
				slog.String("subreddit", sub),
				slog.String("error", err.Error()),
			)
			continue
		}

		taken := 0
		for _, child := range listing.Data.Children {
			post := child.Data
			if post.Stickied || post.ID == "" || post.Title == "" {
				continue
			}
			if taken >= perSub {
				break
			}

			records = append(records, model.CollectedRecord{
				Source:     redditSource,
				ExternalID: post.ID,
				Title:      post.Title,
				URL:        "https://www.reddit.com" + post.Permalink,
			})
			taken++
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("全サブレディットの取得に失敗しました")
	}

	return records, nil
}
