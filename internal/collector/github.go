package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

const (
	// githubSource はGitHubコレクターのソース識別子。
	githubSource = "github"
	// githubSearchURL はリポジトリ検索APIのエンドポイント。
	githubSearchURL = "https://api.github.com/search/repositories"
	// githubRecentDays は「最近作成された」と見なす日数。
	githubRecentDays = 7
	// githubMinStars は検索対象の最低スター数。
	githubMinStars = 10
)

// defaultTopics は収集対象のGitHubトピック。
var defaultTopics = []string{"ai", "llm", "machine-learning", "developer-tools", "saas", "cli"}

// githubSearchResponse はGitHub検索APIのレスポンス。
type githubSearchResponse struct {
	Items []githubRepo `json:"items"`
}

// githubRepo はGitHub検索APIのリポジトリデータ。
type githubRepo struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
}

// GitHubCollector は最近作成された注目リポジトリを検索APIで収集する。
type GitHubCollector struct {
	client *http.Client
	topics []string
}

// NewGitHubCollector はGitHubCollectorの新しいインスタンスを生成する。
func NewGitHubCollector(client *http.Client) *GitHubCollector {
	return &GitHubCollector{
		client: client,
		topics: defaultTopics,
	}
}

// Source はソース識別子を返す。
func (c *GitHubCollector) Source() string {
	return githubSource
}

// FetchItems は直近7日以内に作成されスター数10超のリポジトリを
// 対象トピックで検索し、スター数降順で最大count件のレコードを返す。
// タイトルは "owner/repo: description" の形式。
func (c *GitHubCollector) FetchItems(ctx context.Context, count int) ([]model.CollectedRecord, error) {
	since := time.Now().UTC().AddDate(0, 0, -githubRecentDays).Format("2006-01-02")

	query := fmt.Sprintf("created:>%s stars:>%d topic:%s",
		since, githubMinStars, strings.Join(c.topics, " topic:"))

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", fmt.Sprintf("%d", count))

	var result githubSearchResponse
	if err := fetchJSON(ctx, c.client, githubSearchURL+"?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("GitHubリポジトリの検索に失敗しました: %w", err)
	}

	records := make([]model.CollectedRecord, 0, len(result.Items))
	for _, repo := range result.Items {
		if repo.FullName == "" {
			continue
		}

		title := repo.FullName
		if repo.Description != "" {
			title = fmt.Sprintf("%s: %s", repo.FullName, repo.Description)
		}

		records = append(records, model.CollectedRecord{
			Source:     githubSource,
			ExternalID: repo.FullName,
			Title:      title,
			URL:        repo.HTMLURL,
		})

		if len(records) >= count {
			break
		}
	}

	return records, nil
}
