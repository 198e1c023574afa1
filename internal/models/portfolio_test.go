package models

import (
	"reflect"
	"testing"
)

func TestUniqueTickers_FirstOccurrenceOrder(t *testing.T) {
	p := &Portfolio{
		Holdings: []Holding{
			{Ticker: "MSFT"},
			{Ticker: "AAPL"},
			{Ticker: "MSFT"}, // second lot
			{Ticker: "JPM"},
			{Ticker: "AAPL"},
		},
	}

	got := p.UniqueTickers()
	want := []string{"MSFT", "AAPL", "JPM"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueTickers() = %v, want %v", got, want)
	}
}

func TestUniqueTickers_Empty(t *testing.T) {
	p := &Portfolio{}
	if got := p.UniqueTickers(); len(got) != 0 {
		t.Errorf("UniqueTickers() = %v, want empty", got)
	}
}

func TestIsBrokerImport(t *testing.T) {
	p := &Portfolio{Metadata: PortfolioMetadata{Source: SourceBrokerImport}}
	if !p.IsBrokerImport() {
		t.Error("broker_import source should be preserve-mode")
	}

	for _, source := range []string{SourceUpload, SourceManual, ""} {
		p := &Portfolio{Metadata: PortfolioMetadata{Source: source}}
		if p.IsBrokerImport() {
			t.Errorf("source %q should not be preserve-mode", source)
		}
	}
}

func TestEnrichedHoldingValid(t *testing.T) {
	ok := EnrichedHolding{Ticker: "AAPL"}
	if !ok.Valid() {
		t.Error("holding without error should be valid")
	}
	bad := EnrichedHolding{Ticker: "ZZZZ", Error: "market data not available"}
	if bad.Valid() {
		t.Error("error-flagged holding should be invalid")
	}
}
