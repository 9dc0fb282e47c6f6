package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
	"github.com/meowbank/meow-bank-go/internal/handler"
	"github.com/meowbank/meow-bank-go/internal/infra/cache"
	"github.com/meowbank/meow-bank-go/internal/infra/observability"
	"github.com/meowbank/meow-bank-go/internal/infra/store/filestore"
	"github.com/meowbank/meow-bank-go/internal/service"

	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	metrics := observability.NewMetrics()
	store := filestore.New(filepath.Join(t.TempDir(), "state.json"), logger)
	sess := service.NewSession(
		domain.DefaultState(now),
		engine.New(func() time.Time { return now }, nil),
		store,
		cache.New[domain.Stats](time.Minute),
		metrics,
		logger,
	)

	hash, err := service.HashPin("1234")
	if err != nil {
		t.Fatalf("HashPin: %v", err)
	}
	auth := service.NewParentAuth(hash, "test-secret", time.Hour, logger)

	return handler.NewRouter(sess, auth, metrics, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/readyz", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestIntentMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/transactions", map[string]any{
		"amount": 100, "categoryId": "allowance", "kind": "income",
	}, "")

	rec := doJSON(t, router, http.MethodGet, "/v1/metrics/intents", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []observability.IntentSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	for _, row := range rows {
		if row.Intent == "addTransaction" {
			if row.Applied != 1 {
				t.Errorf("addTransaction applied = %v, want 1", row.Applied)
			}
			return
		}
	}
	t.Error("addTransaction missing from the snapshot")
}

func TestGetState(t *testing.T) {
	rec := doJSON(t, newTestRouter(t), http.MethodGet, "/v1/state", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var state domain.AppState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Profile.Name != "小朋友" {
		t.Errorf("profile name = %q", state.Profile.Name)
	}
	if state.Profile.CatHunger != 100 {
		t.Errorf("catHunger = %d, want 100", state.Profile.CatHunger)
	}
}

func TestAddTransaction(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/transactions", map[string]any{
		"amount":     100,
		"categoryId": "allowance",
		"kind":       "income",
		"note":       "零用錢",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Transaction domain.Transaction `json:"transaction"`
		Profile     domain.Profile     `json:"profile"`
		Balance     int64              `json:"balance"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Balance != 100 {
		t.Errorf("balance = %d, want 100", resp.Balance)
	}
	if resp.Profile.Streak != 1 {
		t.Errorf("streak = %d, want 1", resp.Profile.Streak)
	}
	if resp.Transaction.ID == "" {
		t.Error("expected a generated transaction id")
	}
}

func TestAddTransaction_Validation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"negative amount", map[string]any{"amount": -5, "categoryId": "food", "kind": "expense"}, http.StatusBadRequest},
		{"bad kind", map[string]any{"amount": 5, "categoryId": "food", "kind": "transfer"}, http.StatusBadRequest},
		{"unknown category", map[string]any{"amount": 5, "categoryId": "crypto", "kind": "expense"}, http.StatusNotFound},
		{"kind mismatch", map[string]any{"amount": 5, "categoryId": "allowance", "kind": "expense"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/v1/transactions", tc.body, "")
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWishLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Fund the balance first.
	doJSON(t, router, http.MethodPost, "/v1/transactions", map[string]any{
		"amount": 500, "categoryId": "allowance", "kind": "income",
	}, "")

	rec := doJSON(t, router, http.MethodPost, "/v1/wishes", map[string]any{
		"name": "腳踏車", "emoji": "🚲", "targetAmount": 300,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var wish domain.Wish
	if err := json.NewDecoder(rec.Body).Decode(&wish); err != nil {
		t.Fatalf("decode wish: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/wishes/"+wish.ID+"/water", map[string]any{"amount": 300}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var watered domain.Wish
	if err := json.NewDecoder(rec.Body).Decode(&watered); err != nil {
		t.Fatalf("decode wish: %v", err)
	}
	if watered.SavedAmount != 300 || watered.CompletedAt == nil {
		t.Errorf("wish = %+v, want completed at target", watered)
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/wishes/"+wish.ID, nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/wishes/"+wish.ID, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestWaterWish_OverBalance(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/wishes", map[string]any{
		"name": "玩具", "targetAmount": 100,
	}, "")
	var wish domain.Wish
	if err := json.NewDecoder(rec.Body).Decode(&wish); err != nil {
		t.Fatalf("decode wish: %v", err)
	}

	// No income recorded, so any watering exceeds the balance.
	rec = doJSON(t, router, http.MethodPost, "/v1/wishes/"+wish.ID+"/water", map[string]any{"amount": 50}, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestToggleAccessory_LockedAndUnknown(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/accessories/red-bell/toggle", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for locked accessory, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/accessories/jetpack/toggle", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown accessory, got %d", rec.Code)
	}
}

func TestParentRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/parent/interest", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/parent/login", map[string]any{"pin": "0000"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong pin, got %d", rec.Code)
	}
}

func TestParentFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/parent/login", map[string]any{"pin": "1234"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login domain.ParentLoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/transactions", map[string]any{
		"amount": 1000, "categoryId": "allowance", "kind": "income",
	}, "")
	var created struct {
		Transaction domain.Transaction `json:"transaction"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/parent/transactions/"+created.Transaction.ID+"/approve", nil, login.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPut, "/v1/parent/config", map[string]any{"interestRate": 10.0}, login.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("config: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cfg domain.ParentConfig
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.InterestRate != 10 {
		t.Errorf("interestRate = %v, want 10", cfg.InterestRate)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/parent/interest", nil, login.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("interest: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var interest struct {
		Transaction domain.Transaction `json:"transaction"`
		Balance     int64              `json:"balance"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&interest); err != nil {
		t.Fatalf("decode interest: %v", err)
	}
	if interest.Transaction.Amount != 100 || !interest.Transaction.Approved {
		t.Errorf("interest tx = %+v, want pre-approved amount 100", interest.Transaction)
	}
	if interest.Balance != 1100 {
		t.Errorf("balance = %d, want 1100", interest.Balance)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	var stats domain.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Balance != 1100 || stats.TransactionCount != 2 {
		t.Errorf("stats = %+v, want balance 1100 over 2 transactions", stats)
	}
}
