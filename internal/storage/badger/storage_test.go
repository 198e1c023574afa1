package badger

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(common.NewSilentLogger(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestPortfolioStore_SaveGetListDelete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.PortfolioStore()

	p := &models.Portfolio{
		ID:       "port_1",
		ClientID: "client_1",
		Name:     "Growth",
		Currency: "USD",
		Holdings: []models.Holding{
			{Ticker: "AAPL", Quantity: 10, PurchasePrice: 150.00},
		},
	}

	if err := store.SavePortfolio(ctx, p); err != nil {
		t.Fatalf("SavePortfolio failed: %v", err)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not set on save")
	}

	got, err := store.GetPortfolio(ctx, "port_1")
	if err != nil {
		t.Fatalf("GetPortfolio failed: %v", err)
	}
	if got.Name != "Growth" || len(got.Holdings) != 1 {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	all, err := store.ListPortfolios(ctx)
	if err != nil {
		t.Fatalf("ListPortfolios failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list = %d, want 1", len(all))
	}

	if err := store.DeletePortfolio(ctx, "port_1"); err != nil {
		t.Fatalf("DeletePortfolio failed: %v", err)
	}
	if _, err := store.GetPortfolio(ctx, "port_1"); err == nil {
		t.Error("expected not-found after delete")
	}
}

func TestPortfolioStore_NotFound(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.PortfolioStore().GetPortfolio(ctx, "port_missing")
	if err == nil {
		t.Fatal("expected error for missing portfolio")
	}
	if !IsNotFound(err) {
		t.Errorf("error should wrap the not-found sentinel: %v", err)
	}

	if err := m.PortfolioStore().DeletePortfolio(ctx, "port_missing"); err == nil {
		t.Error("expected error deleting missing portfolio")
	}
}

func TestAnalysisStore_UpsertOverwrites(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.AnalysisStore()

	first := &models.AnalysisRecord{
		PortfolioID: "port_1",
		Status:      models.StatusCompleted,
		Analysis:    &models.PortfolioAnalysis{},
		LastUpdated: time.Now().Add(-time.Hour),
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	second := &models.AnalysisRecord{
		PortfolioID: "port_1",
		Status:      models.StatusError,
		Error:       "market data batch failed",
		LastUpdated: time.Now(),
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.GetByPortfolio(ctx, "port_1")
	if err != nil {
		t.Fatalf("GetByPortfolio failed: %v", err)
	}
	if got.Status != models.StatusError {
		t.Errorf("status = %s, want error (last writer wins)", got.Status)
	}
	if got.Error != "market data batch failed" {
		t.Errorf("error = %q, want recorded message", got.Error)
	}
}

func TestAnalysisStore_DeleteTolerant(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// deleting a missing cache record is not an error (cascade path)
	if err := m.AnalysisStore().DeleteByPortfolio(ctx, "port_missing"); err != nil {
		t.Errorf("DeleteByPortfolio on missing record: %v", err)
	}

	if _, err := m.AnalysisStore().GetByPortfolio(ctx, "port_missing"); !IsNotFound(err) {
		t.Errorf("expected not-found sentinel, got %v", err)
	}
}

func TestNewsStore_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.NewsStore()

	record := &models.NewsRecord{
		PortfolioID: "port_1",
		Items: []models.TickerNews{
			{Ticker: "AAPL", Summary: "New product launch", Sentiment: models.SentimentBullish},
		},
		LastUpdated: time.Now(),
	}
	if err := store.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByPortfolio(ctx, "port_1")
	if err != nil {
		t.Fatalf("GetByPortfolio failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Sentiment != models.SentimentBullish {
		t.Errorf("round-trip mismatch: %+v", got.Items)
	}

	if err := store.DeleteByPortfolio(ctx, "port_1"); err != nil {
		t.Fatalf("DeleteByPortfolio failed: %v", err)
	}
	if _, err := store.GetByPortfolio(ctx, "port_1"); err == nil {
		t.Error("expected not-found after delete")
	}
}

func TestManager_SharedDatabaseIsolation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// same key in different stores must not collide
	if err := m.PortfolioStore().SavePortfolio(ctx, &models.Portfolio{ID: "port_1"}); err != nil {
		t.Fatalf("SavePortfolio failed: %v", err)
	}
	if err := m.AnalysisStore().Upsert(ctx, &models.AnalysisRecord{PortfolioID: "port_1", Status: models.StatusCompleted}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := m.AnalysisStore().DeleteByPortfolio(ctx, "port_1"); err != nil {
		t.Fatalf("DeleteByPortfolio failed: %v", err)
	}
	if _, err := m.PortfolioStore().GetPortfolio(ctx, "port_1"); err != nil {
		t.Errorf("portfolio should survive analysis delete: %v", err)
	}
}
