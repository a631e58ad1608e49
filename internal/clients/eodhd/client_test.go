package eodhd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetRealTimeQuote_ParsesResponse(t *testing.T) {
	mockResp := map[string]interface{}{
		"code":          "AAPL.US",
		"close":         150.25,
		"previousClose": 148.10,
	}

	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	quote, err := client.GetRealTimeQuote(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed: %v", err)
	}

	if capturedPath != "/real-time/AAPL.US" {
		t.Errorf("expected path /real-time/AAPL.US, got %s", capturedPath)
	}
	if quote.Symbol != "AAPL.US" {
		t.Errorf("expected symbol AAPL.US, got %s", quote.Symbol)
	}
	if quote.Current != 150.25 {
		t.Errorf("expected current 150.25, got %.2f", quote.Current)
	}
	if quote.PreviousClose != 148.10 {
		t.Errorf("expected previousClose 148.10, got %.2f", quote.PreviousClose)
	}
}

func TestGetRealTimeQuote_StringPrices(t *testing.T) {
	// EODHD sometimes returns prices as strings, or "NA" when the market
	// has no prior close
	mockResp := map[string]interface{}{
		"code":          "CBOE.AU",
		"close":         "43.25",
		"previousClose": "NA",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	quote, err := client.GetRealTimeQuote(context.Background(), "CBOE.AU")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed with string fields: %v", err)
	}

	if quote.Current != 43.25 {
		t.Errorf("expected current 43.25, got %.2f", quote.Current)
	}
	if quote.PreviousClose != 0 {
		t.Errorf("expected previousClose 0 for NA, got %.2f", quote.PreviousClose)
	}
}

func TestGetRealTimeQuote_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("ticker not found"))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetRealTimeQuote(context.Background(), "INVALID.XX")
	if err == nil {
		t.Fatal("expected error for invalid ticker")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
}

func TestGetRealTimeQuote_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithTimeout(100*time.Millisecond))
	_, err := client.GetRealTimeQuote(context.Background(), "AAPL.US")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestGetNews_ParsesResponse(t *testing.T) {
	mockResp := []map[string]interface{}{
		{
			"date":    "2025-06-01T10:00:00+00:00",
			"title":   "Apple ships new hardware",
			"content": "Cupertino announced...",
			"link":    "https://example.com/apple",
			"symbols": []string{"AAPL.US"},
			"sentiment": map[string]float64{
				"polarity": 0.7,
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "AAPL.US" {
			t.Errorf("expected s=AAPL.US, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	news, err := client.GetNews(context.Background(), "AAPL.US", 10)
	if err != nil {
		t.Fatalf("GetNews failed: %v", err)
	}

	if len(news) != 1 {
		t.Fatalf("expected 1 news item, got %d", len(news))
	}
	if news[0].Title != "Apple ships new hardware" {
		t.Errorf("unexpected title: %s", news[0].Title)
	}
	if news[0].Sentiment != 0.7 {
		t.Errorf("expected sentiment 0.7, got %.2f", news[0].Sentiment)
	}
	if news[0].Symbol != "AAPL.US" {
		t.Errorf("expected symbol AAPL.US, got %s", news[0].Symbol)
	}
}

func TestFlexFloat64_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"number", "43.25", 43.25},
		{"string", `"43.25"`, 43.25},
		{"zero", "0", 0},
		{"empty_string", `""`, 0},
		{"na_string", `"NA"`, 0},
		{"na_slash_string", `"N/A"`, 0},
		{"negative", "-1.5", -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexFloat64
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON(%s) error: %v", tt.input, err)
			}
			if float64(f) != tt.expected {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, float64(f), tt.expected)
			}
		})
	}
}
