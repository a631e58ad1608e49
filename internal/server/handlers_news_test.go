package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corelabs/core/internal/app"
	"github.com/corelabs/core/internal/models"
)

// mockNewsService implements interfaces.NewsService for testing.
type mockNewsService struct {
	review func(ctx context.Context, symbols []string, limit int) (*models.NewsReview, error)
}

func (m *mockNewsService) Review(ctx context.Context, symbols []string, limit int) (*models.NewsReview, error) {
	return m.review(ctx, symbols, limit)
}

func TestHandleNews_ReturnsReview(t *testing.T) {
	var gotSymbols []string
	var gotLimit int
	svc := &mockNewsService{
		review: func(_ context.Context, symbols []string, limit int) (*models.NewsReview, error) {
			gotSymbols = symbols
			gotLimit = limit
			return &models.NewsReview{
				Symbols: symbols,
				Items: []models.ScoredNewsItem{
					{NewsItem: models.NewsItem{Symbol: "AAPL.US", Title: "Earnings beat"}, Relevance: 1.2},
				},
				GeneratedAt: time.Now().UTC(),
			}, nil
		},
	}
	srv := newTestServer(&app.App{NewsService: svc})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news?symbols=AAPL.US,%20MSFT.US&limit=5", nil)
	srv.handleNews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(gotSymbols) != 2 || gotSymbols[0] != "AAPL.US" || gotSymbols[1] != "MSFT.US" {
		t.Errorf("symbols passed to service = %v", gotSymbols)
	}
	if gotLimit != 5 {
		t.Errorf("limit passed to service = %d, want 5", gotLimit)
	}

	var got models.NewsReview
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "Earnings beat" {
		t.Errorf("unexpected items: %+v", got.Items)
	}
}

func TestHandleNews_MissingSymbolsIs400(t *testing.T) {
	srv := newTestServer(&app.App{NewsService: &mockNewsService{}})

	for _, target := range []string{"/api/news", "/api/news?symbols=,%20,"} {
		rec := httptest.NewRecorder()
		srv.handleNews(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleNews_BadLimitIs400(t *testing.T) {
	srv := newTestServer(&app.App{NewsService: &mockNewsService{}})

	for _, target := range []string{"/api/news?symbols=AAPL.US&limit=0", "/api/news?symbols=AAPL.US&limit=ten"} {
		rec := httptest.NewRecorder()
		srv.handleNews(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleNews_ServiceFailureIs502(t *testing.T) {
	svc := &mockNewsService{
		review: func(_ context.Context, _ []string, _ int) (*models.NewsReview, error) {
			return nil, context.DeadlineExceeded
		},
	}
	srv := newTestServer(&app.App{NewsService: svc})

	rec := httptest.NewRecorder()
	srv.handleNews(rec, httptest.NewRequest(http.MethodGet, "/api/news?symbols=AAPL.US", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("service failure: got %d, want 502", rec.Code)
	}
}
