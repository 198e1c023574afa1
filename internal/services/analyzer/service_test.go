package analyzer

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

// mockMarketClient returns canned security data per ticker. Tickers absent
// from the data map come back as error entries, matching the provider
// contract. When failAll is set the whole batch call fails.
type mockMarketClient struct {
	data    map[string]models.SecurityData
	failAll bool
	calls   int
}

func (m *mockMarketClient) GetSecurityData(ctx context.Context, ticker string) (*models.SecurityData, error) {
	if m.failAll {
		return nil, fmt.Errorf("provider unavailable")
	}
	if d, ok := m.data[ticker]; ok {
		return &d, nil
	}
	return &models.SecurityData{Ticker: ticker, Error: "market data not available"}, nil
}

func (m *mockMarketClient) GetBatchSecurityData(ctx context.Context, tickers []string) ([]models.SecurityData, error) {
	m.calls++
	if m.failAll {
		return nil, fmt.Errorf("provider unavailable")
	}
	out := make([]models.SecurityData, 0, len(tickers))
	for _, t := range tickers {
		if d, ok := m.data[t]; ok {
			out = append(out, d)
		} else {
			out = append(out, models.SecurityData{Ticker: t, Error: "market data not available"})
		}
	}
	return out, nil
}

func testPortfolio() *models.Portfolio {
	return &models.Portfolio{
		ID:       "port_test",
		ClientID: "client_1",
		Name:     "Growth",
		Currency: "USD",
		Holdings: []models.Holding{
			{Ticker: "AAPL", Quantity: 10, PurchasePrice: 150.00},
			{Ticker: "JPM", Quantity: 20, PurchasePrice: 140.00},
		},
		Metadata: models.PortfolioMetadata{Source: models.SourceUpload},
	}
}

func marketData() map[string]models.SecurityData {
	return map[string]models.SecurityData{
		"AAPL": {
			Ticker:        "AAPL",
			LastPrice:     floatPtr(200.00),
			Week52High:    floatPtr(210.00),
			Week52Low:     floatPtr(140.00),
			AnalystRating: strPtr("buy"),
			Sector:        "Technology",
		},
		"JPM": {
			Ticker:        "JPM",
			LastPrice:     floatPtr(150.00),
			Week52High:    floatPtr(200.00),
			Week52Low:     floatPtr(120.00),
			AnalystRating: strPtr("hold"),
			Sector:        "Financials",
		},
	}
}

func TestAnalyze_ComputesValuationAndTotals(t *testing.T) {
	client := &mockMarketClient{data: marketData()}
	svc := NewService(client, common.NewSilentLogger())

	analysis, err := svc.Analyze(context.Background(), testPortfolio())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	holdings := analysis.Portfolio.Holdings
	if len(holdings) != 2 {
		t.Fatalf("holdings = %d, want 2", len(holdings))
	}

	// AAPL: 10 @ 200 vs cost 10 @ 150
	aapl := holdings[0]
	if !approxEqual(aapl.CurrentValue, 2000.00, 0.01) {
		t.Errorf("AAPL current value = %.2f, want 2000.00", aapl.CurrentValue)
	}
	if !approxEqual(aapl.CostBasis, 1500.00, 0.01) {
		t.Errorf("AAPL cost basis = %.2f, want 1500.00", aapl.CostBasis)
	}
	if !approxEqual(aapl.GainLossPercent, 33.33, 0.01) {
		t.Errorf("AAPL gain %% = %.2f, want 33.33", aapl.GainLossPercent)
	}

	m := analysis.Metrics
	// totals: value 2000+3000, cost 1500+2800
	if !approxEqual(m.TotalValue, 5000.00, 0.01) {
		t.Errorf("total value = %.2f, want 5000.00", m.TotalValue)
	}
	if !approxEqual(m.TotalCost, 4300.00, 0.01) {
		t.Errorf("total cost = %.2f, want 4300.00", m.TotalCost)
	}
	if !approxEqual(m.TotalGainLoss, 700.00, 0.01) {
		t.Errorf("total gain = %.2f, want 700.00", m.TotalGainLoss)
	}
	if m.HoldingsCount != 2 {
		t.Errorf("holdings count = %d, want 2", m.HoldingsCount)
	}

	// sector allocation sums to 100 across valid holdings
	sum := 0.0
	for _, pct := range m.SectorAllocation {
		sum += pct
	}
	if !approxEqual(sum, 100.00, 0.01) {
		t.Errorf("sector allocation sum = %.2f, want 100.00", sum)
	}
	if !approxEqual(m.SectorAllocation["Technology"], 40.00, 0.01) {
		t.Errorf("Technology allocation = %.2f, want 40.00", m.SectorAllocation["Technology"])
	}
}

func TestAnalyze_MissingTickerFlaggedNotDropped(t *testing.T) {
	client := &mockMarketClient{data: marketData()}
	svc := NewService(client, common.NewSilentLogger())

	p := testPortfolio()
	p.Holdings = append(p.Holdings, models.Holding{Ticker: "ZZZZ", Quantity: 5, PurchasePrice: 10.00})

	analysis, err := svc.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	holdings := analysis.Portfolio.Holdings
	if len(holdings) != 3 {
		t.Fatalf("holdings = %d, want 3 (flagged holding kept)", len(holdings))
	}

	missing := holdings[2]
	if missing.Ticker != "ZZZZ" {
		t.Fatalf("holding order changed: got %s at index 2", missing.Ticker)
	}
	if missing.Error == "" {
		t.Error("missing-data holding should carry an error")
	}
	if missing.CurrentValue != 0 {
		t.Errorf("missing-data holding current value = %.2f, want 0", missing.CurrentValue)
	}

	// aggregation excludes the flagged holding
	if analysis.Metrics.HoldingsCount != 2 {
		t.Errorf("holdings count = %d, want 2", analysis.Metrics.HoldingsCount)
	}
	if !approxEqual(analysis.Metrics.TotalValue, 5000.00, 0.01) {
		t.Errorf("total value = %.2f, want 5000.00", analysis.Metrics.TotalValue)
	}
}

func TestAnalyze_BrokerImportPreservesValuation(t *testing.T) {
	client := &mockMarketClient{data: marketData()}
	svc := NewService(client, common.NewSilentLogger())

	p := testPortfolio()
	p.Metadata.Source = models.SourceBrokerImport
	p.Holdings = []models.Holding{
		{
			Ticker:          "AAPL",
			Quantity:        10,
			PurchasePrice:   150.00,
			CurrentPrice:    180.00, // broker's LTP, not the provider's 200
			CurrentValue:    1800.00,
			CostBasis:       1500.00,
			GainLoss:        300.00,
			GainLossPercent: 20.00,
		},
	}

	analysis, err := svc.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	h := analysis.Portfolio.Holdings[0]
	if !approxEqual(h.CurrentPrice, 180.00, 0.01) {
		t.Errorf("current price = %.2f, want preserved 180.00", h.CurrentPrice)
	}
	if !approxEqual(h.CurrentValue, 1800.00, 0.01) {
		t.Errorf("current value = %.2f, want preserved 1800.00", h.CurrentValue)
	}
	// overlay still applied
	if h.Sector != "Technology" {
		t.Errorf("sector = %q, want Technology overlay", h.Sector)
	}
	if h.MarketData == nil || h.MarketData.AnalystRating == nil || *h.MarketData.AnalystRating != "buy" {
		t.Error("market data overlay missing on preserved holding")
	}
}

func TestAnalyze_BatchFailurePropagates(t *testing.T) {
	client := &mockMarketClient{failAll: true}
	svc := NewService(client, common.NewSilentLogger())

	_, err := svc.Analyze(context.Background(), testPortfolio())
	if err == nil {
		t.Fatal("expected error when the provider batch fails")
	}
}

func TestAnalyze_QueriesUniqueTickersOnce(t *testing.T) {
	client := &mockMarketClient{data: marketData()}
	svc := NewService(client, common.NewSilentLogger())

	p := testPortfolio()
	// duplicate lot of AAPL must not produce a second provider query
	p.Holdings = append(p.Holdings, models.Holding{Ticker: "AAPL", Quantity: 5, PurchasePrice: 160.00})

	analysis, err := svc.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("batch calls = %d, want 1", client.calls)
	}
	if len(analysis.Portfolio.Holdings) != 3 {
		t.Errorf("holdings = %d, want 3 (both AAPL lots enriched)", len(analysis.Portfolio.Holdings))
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	client := &mockMarketClient{data: marketData()}
	svc := NewService(client, common.NewSilentLogger())

	first, err := svc.Analyze(context.Background(), testPortfolio())
	if err != nil {
		t.Fatalf("first Analyze failed: %v", err)
	}
	second, err := svc.Analyze(context.Background(), testPortfolio())
	if err != nil {
		t.Fatalf("second Analyze failed: %v", err)
	}

	if !approxEqual(first.Metrics.TotalValue, second.Metrics.TotalValue, 0.001) {
		t.Errorf("total value differs between runs: %.4f vs %.4f",
			first.Metrics.TotalValue, second.Metrics.TotalValue)
	}
	if len(first.Insights) != len(second.Insights) {
		t.Errorf("insight count differs between runs: %d vs %d",
			len(first.Insights), len(second.Insights))
	}
}

func TestAnalyze_EmptyHoldings(t *testing.T) {
	client := &mockMarketClient{data: marketData()}
	svc := NewService(client, common.NewSilentLogger())

	p := testPortfolio()
	p.Holdings = nil

	analysis, err := svc.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.Metrics.TotalValue != 0 {
		t.Errorf("total value = %.2f, want 0", analysis.Metrics.TotalValue)
	}
	if analysis.Metrics.TotalGainLossPercent != 0 {
		t.Errorf("gain %% = %.2f, want 0 (no division by zero)", analysis.Metrics.TotalGainLossPercent)
	}
	if len(analysis.Insights) != 0 {
		t.Errorf("insights = %d, want 0", len(analysis.Insights))
	}
}
