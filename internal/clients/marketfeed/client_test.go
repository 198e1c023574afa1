package marketfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithRateLimit(100),
	)
	return srv, client
}

func TestGetSecurityData(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/security/AAPL") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "test-key" {
			t.Error("api_token missing from request")
		}
		if r.URL.Query().Get("fmt") != "json" {
			t.Error("fmt=json missing from request")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ticker":         "AAPL",
			"last_price":     235.50,
			"week_52_high":   "260.10", // provider sometimes sends strings
			"week_52_low":    "164.08",
			"analyst_rating": "buy",
			"sector":         "Technology",
		})
	})

	data, err := client.GetSecurityData(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetSecurityData failed: %v", err)
	}

	if data.LastPrice == nil || *data.LastPrice != 235.50 {
		t.Errorf("last price = %v, want 235.50", data.LastPrice)
	}
	if data.Week52High == nil || *data.Week52High != 260.10 {
		t.Errorf("week 52 high = %v, want 260.10 (string coerced)", data.Week52High)
	}
	if data.AnalystRating == nil || *data.AnalystRating != "buy" {
		t.Errorf("rating = %v, want buy", data.AnalystRating)
	}
	if data.Sector != "Technology" {
		t.Errorf("sector = %q, want Technology", data.Sector)
	}
}

func TestGetSecurityData_PartialFields(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// price only, the rest absent or junk strings
		w.Write([]byte(`{"ticker": "XYZ", "last_price": "42.5", "pe_ratio": "N/A"}`))
	})

	data, err := client.GetSecurityData(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("GetSecurityData failed: %v", err)
	}
	if data.LastPrice == nil || *data.LastPrice != 42.5 {
		t.Errorf("last price = %v, want 42.5", data.LastPrice)
	}
	if data.PERatio == nil || *data.PERatio != 0 {
		t.Errorf("pe ratio = %v, want 0 for N/A", data.PERatio)
	}
	if data.MarketCap != nil {
		t.Errorf("market cap = %v, want nil for absent field", data.MarketCap)
	}
}

func TestGetBatchSecurityData_AbsorbsPerTickerFailures(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("unknown ticker"))
			return
		}
		ticker := strings.TrimPrefix(r.URL.Path, "/security/")
		json.NewEncoder(w).Encode(map[string]interface{}{"ticker": ticker, "last_price": 100.0})
	})

	results, err := client.GetBatchSecurityData(context.Background(), []string{"AAPL", "BAD", "MSFT"})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3 (one per input ticker)", len(results))
	}

	if results[0].Error != "" || results[2].Error != "" {
		t.Error("healthy tickers should not carry errors")
	}
	if results[1].Ticker != "BAD" || results[1].Error == "" {
		t.Errorf("failed ticker should carry an error entry: %+v", results[1])
	}
}

func TestGetBatchSecurityData_AuthFailureAbortsBatch(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api token"))
	})

	_, err := client.GetBatchSecurityData(context.Background(), []string{"AAPL", "MSFT", "GOOGL"})
	if err == nil {
		t.Fatal("expected batch to fail on auth error")
	}
	if calls != 1 {
		t.Errorf("requests = %d, want 1 (abort on first auth failure)", calls)
	}
}

func TestGetBatchSecurityData_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.GetBatchSecurityData(ctx, []string{"AAPL", "MSFT"})
	if err == nil {
		t.Fatal("expected batch to fail on cancelled context")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "unknown ticker", Endpoint: "/security/ZZZZ"}
	msg := err.Error()
	for _, want := range []string{"404", "unknown ticker", "/security/ZZZZ"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}
