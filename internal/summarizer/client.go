// Package summarizer はClaude APIによるアイテムのエンリッチ機能を提供する。
// タイトルの日本語訳・1文サマリー・既知タグの付与を行う。
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// messagesEndpoint はAnthropic Messages APIのエンドポイント。
	messagesEndpoint = "https://api.anthropic.com/v1/messages"
	// apiVersion はAnthropic APIのバージョンヘッダー値。
	apiVersion = "2023-06-01"
	// maxTokens はレスポンスの最大トークン数。
	maxTokens = 500
	// requestTimeout はAPI呼び出しのタイムアウト。
	requestTimeout = 60 * time.Second
)

// KnownTags はタグ付与で許可されるタグの語彙。
// この語彙にないタグはレスポンスから除外される。
var KnownTags = []string{
	"ai", "vibe-code", "solo", "saas", "startup", "llm",
	"python", "javascript", "rust", "go", "web", "mobile",
	"devtools", "opensource",
}

// Enrichment は1アイテムのエンリッチ結果。
type Enrichment struct {
	TitleTranslated string   `json:"title_ja"`
	Summary         string   `json:"summary"`
	Tags            []string `json:"tags"`
}

// Client はAnthropic Messages APIのクライアント。
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// APIキーが空の場合はnilを返し、呼び出し元は要約機能を無効として扱う。
func NewClient(apiKey, model string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     apiKey,
		model:      model,
		endpoint:   messagesEndpoint,
	}
}

// messagesRequest はMessages APIのリクエストボディ。
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse はMessages APIのレスポンスボディ。
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Summarize はタイトルとURLからエンリッチ結果を生成する。
// レスポンスJSONのパースに失敗した場合は元タイトルをサマリーとする
// フォールバック結果を返す（エラーにはしない）。
func (c *Client) Summarize(ctx context.Context, title, url string) (*Enrichment, error) {
	prompt := fmt.Sprintf(`以下の記事のタイトルを日本語に翻訳し、内容を推測して1文で要約してください。
さらに、次のタグリストから当てはまるものを最大3つ選んでください。

タグリスト: %s

タイトル: %s
URL: %s

以下のJSON形式のみで回答してください（説明文は不要）:
{"title_ja": "...", "summary": "...", "tags": ["..."]}`,
		strings.Join(KnownTags, ", "), title, url)

	reqBody, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("要約APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("要約APIがステータス %d を返しました", resp.StatusCode)
	}

	var apiResp messagesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("要約APIのレスポンスにコンテンツが含まれていません")
	}

	return parseEnrichment(apiResp.Content[0].Text, title), nil
}

// parseEnrichment はモデルの出力テキストからエンリッチ結果を抽出する。
// コードフェンス付きJSONにも対応する。抽出に失敗した場合は
// 元タイトルをサマリーとするフォールバック結果を返す。
func parseEnrichment(text, fallbackTitle string) *Enrichment {
	jsonText := extractJSON(text)

	var result Enrichment
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil || result.Summary == "" {
		return &Enrichment{
			TitleTranslated: fallbackTitle,
			Summary:         fallbackTitle,
			Tags:            nil,
		}
	}

	result.Tags = filterKnownTags(result.Tags)
	if result.TitleTranslated == "" {
		result.TitleTranslated = fallbackTitle
	}

	return &result
}

// extractJSON はコードフェンスや前後の説明文を取り除き、JSON部分のみを返す。
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	// 最初の{から最後の}までを抽出する
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}

	return text
}

// filterKnownTags は語彙に含まれないタグを除外する。
func filterKnownTags(tags []string) []string {
	known := make(map[string]bool, len(KnownTags))
	for _, t := range KnownTags {
		known[t] = true
	}

	filtered := make([]string, 0, len(tags))
	for _, t := range tags {
		normalized := strings.ToLower(strings.TrimSpace(t))
		if known[normalized] {
			filtered = append(filtered, normalized)
		}
	}

	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
