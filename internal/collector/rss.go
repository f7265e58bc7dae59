package collector

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/trendcatch/internal/model"
)

const (
	// tldrSource はTLDRニュースレターコレクターのソース識別子。
	tldrSource = "tldr"
	// productHuntSource はProduct Huntコレクターのソース識別子。
	productHuntSource = "producthunt"
	// productHuntFeedURL はProduct HuntのAtomフィード。
	productHuntFeedURL = "https://www.producthunt.com/feed"
	// maxFeedBodySize はフィードボディの最大読み込みサイズ。
	maxFeedBodySize = 5 * 1024 * 1024
)

// tldrFeedURLs はTLDRの収集対象フィード。
var tldrFeedURLs = []string{
	"https://tldr.tech/api/rss/tech",
	"https://tldr.tech/api/rss/ai",
	"https://tldr.tech/api/rss/webdev",
}

// fetchFeed は指定URLのフィードを取得してgofeedでパースする。
func fetchFeed(ctx context.Context, client *http.Client, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("フィードがステータス %d を返しました: %s", resp.StatusCode, feedURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	parser := gofeed.NewParser()
	parsed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	return parsed, nil
}

// TLDRCollector はTLDRニュースレターのRSSフィードを収集する。
type TLDRCollector struct {
	client *http.Client
}

// NewTLDRCollector はTLDRCollectorの新しいインスタンスを生成する。
func NewTLDRCollector(client *http.Client) *TLDRCollector {
	return &TLDRCollector{client: client}
}

// Source はソース識別子を返す。
func (c *TLDRCollector) Source() string {
	return tldrSource
}

// FetchItems はTLDRの各フィードからエントリを収集し、最大count件のレコードを返す。
// TLDRのフィードは安定したGUIDを提供しないため、
// md5("title:url")の先頭16文字を外部IDとして使用する。
// 1つのフィードの取得失敗は警告ログに留め、残りの収集を続行する。
func (c *TLDRCollector) FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error) {
	perFeed := count / len(tldrFeedURLs)
	if perFeed < 1 {
		perFeed = 1
	}

	records := make([]model.CollectedRecord, 0, count)
	for _, feedURL := range tldrFeedURLs {
		parsed, err := fetchFeed(ctx, c.client, feedURL)
		if err != nil {
			slog.Warn("TLDRフィードの取得に失敗しました",
				slog.String("feed_url", feedURL),
				slog.String("error", err.Error()),
			)
			continue
		}

		taken := 0
		for _, entry := range parsed.Items {
			if entry == nil || entry.Title == "" || entry.Link == "" {
				continue
			}
			if taken >= perFeed {
				break
			}

			records = append(records, model.CollectedRecord{
				Source:     tldrSource,
				ExternalID: contentHashID(entry.Title, entry.Link),
				Title:      entry.Title,
				URL:        entry.Link,
			})
			taken++
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("全TLDRフィードの取得に失敗しました")
	}

	return records, nil
}

// contentHashID はタイトルとURLから安定した外部IDを導出する。
func contentHashID(title, link string) string {
	sum := md5.Sum([]byte(title + ":" + link))
	return hex.EncodeToString(sum[:])[:16]
}

// ProductHuntCollector はProduct HuntのAtomフィードから新着プロダクトを収集する。
type ProductHuntCollector struct {
	client  *http.Client
	feedURL string
}

// NewProductHuntCollector はProductHuntCollectorの新しいインスタンスを生成する。
func NewProductHuntCollector(client *http.Client) *ProductHuntCollector {
	return &ProductHuntCollector{
		client:  client,
		feedURL: productHuntFeedURL,
	}
}

// Source はソース識別子を返す。
func (c *ProductHuntCollector) Source() string {
	return productHuntSource
}

// FetchItems はAtomフィードから最大count件のレコードを返す。
// 外部IDにはリンクのパス末尾（/posts/以降のスラッグ）を使用する。
func (c *ProductHuntCollector) FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error) {
	parsed, err := fetchFeed(ctx, c.client, c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("Product Huntフィードの取得に失敗しました: %w", err)
	}

	records := make([]model.CollectedRecord, 0, count)
	for _, entry := range parsed.Items {
		if entry == nil || entry.Title == "" || entry.Link == "" {
			continue
		}

		externalID := postSlug(entry.Link)
		if externalID == "" {
			continue
		}

		records = append(records, model.CollectedRecord{
			Source:     productHuntSource,
			ExternalID: externalID,
			Title:      entry.Title,
			URL:        entry.Link,
		})

		if len(records) >= count {
			break
		}
	}

	return records, nil
}

// postSlug はProduct Huntの投稿URLからスラッグを抽出する。
// 例: https://www.producthunt.com/posts/example-app → example-app
func postSlug(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}

	path := strings.Trim(parsed.Path, "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "posts" {
		// /posts/以外のリンクはパス末尾をそのまま使う
		if len(parts) > 0 && parts[len(parts)-1] != "" {
			return parts[len(parts)-1]
		}
		return ""
	}

	return parts[1]
}
