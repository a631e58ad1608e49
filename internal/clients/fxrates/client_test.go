package fxrates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetUSDRateTable_ParsesResponse(t *testing.T) {
	mockResp := map[string]interface{}{
		"result":    "success",
		"base_code": "USD",
		"rates": map[string]float64{
			"USD": 1,
			"AUD": 1.52,
			"JPY": 149.8,
		},
	}

	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL))
	rates, err := client.GetUSDRateTable(context.Background())
	if err != nil {
		t.Fatalf("GetUSDRateTable failed: %v", err)
	}

	if capturedPath != "/latest/USD" {
		t.Errorf("expected path /latest/USD, got %s", capturedPath)
	}
	if rates["AUD"] != 1.52 {
		t.Errorf("expected AUD 1.52, got %v", rates["AUD"])
	}
	if rates["JPY"] != 149.8 {
		t.Errorf("expected JPY 149.8, got %v", rates["JPY"])
	}
}

func TestGetUSDRateTable_ProviderError(t *testing.T) {
	mockResp := map[string]interface{}{
		"result":     "error",
		"error-type": "invalid-key",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.GetUSDRateTable(context.Background())
	if err == nil {
		t.Fatal("expected error for provider error result")
	}
}

func TestGetUSDRateTable_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down for maintenance"))
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL))
	_, err := client.GetUSDRateTable(context.Background())
	if err == nil {
		t.Fatal("expected error on 503")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", apiErr.StatusCode)
	}
}

func TestGetUSDRateTable_SendsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected Authorization header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": "success",
			"rates":  map[string]float64{"USD": 1},
		})
	}))
	defer srv.Close()

	client := NewClient("secret", WithBaseURL(srv.URL))
	if _, err := client.GetUSDRateTable(context.Background()); err != nil {
		t.Fatalf("GetUSDRateTable failed: %v", err)
	}
}
