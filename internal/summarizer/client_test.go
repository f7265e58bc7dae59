package summarizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestNewClient_EmptyAPIKey はAPIキー未設定時にnilが返ることをテストする。
func TestNewClient_EmptyAPIKey(t *testing.T) {
	if client := NewClient("", "claude-sonnet-4-20250514"); client != nil {
		t.Error("NewClient(\"\") != nil, want nil")
	}
}

// TestParseEnrichment_CleanJSON は素のJSONレスポンスのパースをテストする。
func TestParseEnrichment_CleanJSON(t *testing.T) {
	text := `{"title_ja": "Goの新機能", "summary": "Go 1.25の新機能紹介。", "tags": ["go", "opensource"]}`

	got := parseEnrichment(text, "fallback")

	if got.TitleTranslated != "Goの新機能" {
		t.Errorf("TitleTranslated = %q", got.TitleTranslated)
	}
	if got.Summary != "Go 1.25の新機能紹介。" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" {
		t.Errorf("Tags = %v", got.Tags)
	}
}

// TestParseEnrichment_CodeFencedJSON はコードフェンス付きレスポンスのパースをテストする。
func TestParseEnrichment_CodeFencedJSON(t *testing.T) {
	text := "```json\n{\"title_ja\": \"タイトル\", \"summary\": \"要約文。\", \"tags\": [\"ai\"]}\n```"

	got := parseEnrichment(text, "fallback")

	if got.Summary != "要約文。" {
		t.Errorf("Summary = %q, want 要約文。", got.Summary)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "ai" {
		t.Errorf("Tags = %v, want [ai]", got.Tags)
	}
}

// TestParseEnrichment_SurroundingText はJSON前後に説明文がある場合のパースをテストする。
func TestParseEnrichment_SurroundingText(t *testing.T) {
	text := `以下が結果です。
{"title_ja": "タイトル", "summary": "要約。", "tags": []}
以上です。`

	got := parseEnrichment(text, "fallback")

	if got.Summary != "要約。" {
		t.Errorf("Summary = %q, want 要約。", got.Summary)
	}
}

// TestParseEnrichment_Garbage はパース不能なレスポンスでフォールバックが
// 返ることをテストする。
func TestParseEnrichment_Garbage(t *testing.T) {
	got := parseEnrichment("すみません、要約できませんでした。", "Original Title")

	if got.Summary != "Original Title" {
		t.Errorf("Summary = %q, want 元タイトルへのフォールバック", got.Summary)
	}
	if got.TitleTranslated != "Original Title" {
		t.Errorf("TitleTranslated = %q, want 元タイトル", got.TitleTranslated)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
}

// TestFilterKnownTags は語彙外タグの除外と正規化をテストする。
func TestFilterKnownTags(t *testing.T) {
	got := filterKnownTags([]string{"Go", " ai ", "blockchain", "LLM", "quantum"})

	want := []string{"go", "ai", "llm"}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestFilterKnownTags_AllUnknown は全タグが語彙外の場合にnilが返ることをテストする。
func TestFilterKnownTags_AllUnknown(t *testing.T) {
	if got := filterKnownTags([]string{"blockchain", "quantum"}); got != nil {
		t.Errorf("got = %v, want nil", got)
	}
}

// TestClient_Summarize はMessages APIの呼び出しとレスポンス処理をテストする。
func TestClient_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": [{"type": "text", "text": "{\"title_ja\": \"訳\", \"summary\": \"要約。\", \"tags\": [\"go\"]}"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "claude-sonnet-4-20250514")
	client.endpoint = server.URL

	got, err := client.Summarize(context.Background(), "Title", "https://example.com")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if got.TitleTranslated != "訳" || got.Summary != "要約。" {
		t.Errorf("got = %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go]", got.Tags)
	}
}

// TestClient_Summarize_APIError はAPIエラーステータスがエラーとして返ることをテストする。
func TestClient_Summarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "claude-sonnet-4-20250514")
	client.endpoint = server.URL

	if _, err := client.Summarize(context.Background(), "Title", "https://example.com"); err == nil {
		t.Error("Summarize() error = nil, want error")
	}
}
