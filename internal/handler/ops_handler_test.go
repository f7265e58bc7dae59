package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/trendcatch/internal/collector"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/summarizer"
)

// newOpsRouter は収集・要約ハンドラーをマウントしたテスト用ルーターを生成する。
func newOpsRouter(h *OpsHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/collect", h.Collect)
	r.Post("/api/summarize", h.Summarize)
	return r
}

// TestCollect は収集実行後に台帳同期と残量の減算が行われることをテストする。
func TestCollect(t *testing.T) {
	incrementCalled := false
	quota := &mockQuotaService{
		checkFn: func(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error) {
			return true, 3, nil
		},
		incrementFn: func(ctx context.Context, userUUID string, action model.QuotaAction) error {
			incrementCalled = true
			return nil
		},
	}
	runner := &mockCollectRunner{
		collectAllFn: func(ctx context.Context) *collector.CollectSummary {
			return &collector.CollectSummary{TotalInserted: 12}
		},
	}
	syncer := &mockSyncer{
		syncFn: func(ctx context.Context, userUUID string) (int, error) {
			return 12, nil
		},
	}
	h := NewOpsHandler(quota, runner, &mockSummarizeRunner{}, syncer, 10)

	rec := doRequest(newOpsRouter(h), http.MethodPost, "/api/collect", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !incrementCalled {
		t.Error("クォータカウンタが加算されていない")
	}

	var resp collectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if resp.TotalInserted != 12 || resp.Synced != 12 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2（3から1消費）", resp.Remaining)
	}
}

// TestCollect_QuotaExceeded はクォータ超過時に429が返り、
// 収集が実行されないことをテストする。
func TestCollect_QuotaExceeded(t *testing.T) {
	collectCalled := false
	quota := &mockQuotaService{
		checkFn: func(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error) {
			return false, 0, nil
		},
		incrementFn: func(ctx context.Context, userUUID string, action model.QuotaAction) error {
			t.Error("超過時にカウンタが加算された")
			return nil
		},
	}
	runner := &mockCollectRunner{
		collectAllFn: func(ctx context.Context) *collector.CollectSummary {
			collectCalled = true
			return &collector.CollectSummary{}
		},
	}
	h := NewOpsHandler(quota, runner, &mockSummarizeRunner{}, &mockSyncer{}, 10)

	rec := doRequest(newOpsRouter(h), http.MethodPost, "/api/collect", "")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if collectCalled {
		t.Error("超過時に収集が実行された")
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if resp.Code != model.ErrCodeQuotaExceeded {
		t.Errorf("Code = %q, want %q", resp.Code, model.ErrCodeQuotaExceeded)
	}
}

// TestCollect_SupporterUnlimited はサポーターの残量が負の値（無制限）の
// まま返ることをテストする。
func TestCollect_SupporterUnlimited(t *testing.T) {
	quota := &mockQuotaService{
		checkFn: func(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error) {
			return true, -1, nil
		},
	}
	h := NewOpsHandler(quota, &mockCollectRunner{}, &mockSummarizeRunner{}, &mockSyncer{}, 10)

	rec := doRequest(newOpsRouter(h), http.MethodPost, "/api/collect", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp collectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if resp.Remaining != -1 {
		t.Errorf("Remaining = %d, want -1（無制限は減算しない）", resp.Remaining)
	}
}

// TestSummarize は要約バッチの実行結果が返ることをテストする。
func TestSummarize(t *testing.T) {
	var gotBatch int
	runner := &mockSummarizeRunner{
		enabled: true,
		summarizeFn: func(ctx context.Context, limit int) (summarizer.BatchResult, error) {
			gotBatch = limit
			return summarizer.BatchResult{Total: 5, Summarized: 4, Failed: 1}, nil
		},
	}
	h := NewOpsHandler(&mockQuotaService{}, &mockCollectRunner{}, runner, &mockSyncer{}, 10)

	rec := doRequest(newOpsRouter(h), http.MethodPost, "/api/summarize", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotBatch != 10 {
		t.Errorf("batch = %d, want 10", gotBatch)
	}

	var resp summarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスのパースに失敗: %v", err)
	}
	if resp.Summarized != 4 || resp.Failed != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

// TestSummarize_Disabled は要約機能が無効な場合に503が返ることをテストする。
func TestSummarize_Disabled(t *testing.T) {
	checkCalled := false
	quota := &mockQuotaService{
		checkFn: func(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error) {
			checkCalled = true
			return true, 30, nil
		},
	}
	h := NewOpsHandler(quota, &mockCollectRunner{}, &mockSummarizeRunner{enabled: false}, &mockSyncer{}, 10)

	rec := doRequest(newOpsRouter(h), http.MethodPost, "/api/summarize", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if checkCalled {
		t.Error("無効時にクォータが消費された")
	}
}
