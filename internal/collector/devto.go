package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hitoshi/trendcatch/internal/model"
)

const (
	// devtoSource はdev.toコレクターのソース識別子。
	devtoSource = "devto"
	// devtoArticlesURLFormat は直近1週間の人気記事一覧エンドポイント。
	devtoArticlesURLFormat = "https://dev.to/api/articles?top=7&per_page=%d"
)

// devtoArticle はdev.to APIの記事データ。
type devtoArticle struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DevtoCollector はdev.toの週間人気記事を収集する。
type DevtoCollector struct {
	client *http.Client
}

// NewDevtoCollector はDevtoCollectorの新しいインスタンスを生成する。
func NewDevtoCollector(client *http.Client) *DevtoCollector {
	return &DevtoCollector{client: client}
}

// Source はソース識別子を返す。
func (c *DevtoCollector) Source() string {
	return devtoSource
}

// FetchItems は直近1週間の人気記事を最大count件取得する。
func (c *DevtoCollector) FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error) {
	var articles []devtoArticle
	if err := fetchJSON(ctx, c.client, fmt.Sprintf(devtoArticlesURLFormat, count), &articles); err != nil {
		return nil, fmt.Errorf("dev.to記事の取得に失敗しました: %w", err)
	}

	records := make([]model.CollectedRecord, 0, len(articles))
	for _, a := range articles {
		if a.ID == 0 || a.Title == "" {
			continue
		}

		records = append(records, model.CollectedRecord{
			Source:     devtoSource,
			ExternalID: strconv.Itoa(a.ID),
			Title:      a.Title,
			URL:        a.URL,
		})

		if len(records) >= count {
			break
		}
	}

	return records, nil
}
