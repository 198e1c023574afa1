package analyzer

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// Insight rule thresholds.
const (
	nearHighPosition       = 0.9
	nearLowPosition        = 0.1
	concentrationThreshold = 30.0
	performanceThreshold   = 10.0
)

// generateInsights runs the fixed rule set over enriched holdings and
// metrics. Per-holding rules (analyst rating, 52-week range) run in one pass
// over the holdings in input order, followed by the concentration and
// performance rules. Every rule is independent; output order is the rule
// evaluation order.
func generateInsights(holdings []models.EnrichedHolding, metrics models.PortfolioMetrics) []models.Insight {
	insights := []models.Insight{}

	for _, h := range holdings {
		if insight, ok := ratingInsight(h); ok {
			insights = append(insights, insight)
		}
		if insight, ok := rangeInsight(h); ok {
			insights = append(insights, insight)
		}
	}

	if insight, ok := concentrationInsight(metrics); ok {
		insights = append(insights, insight)
	}
	if insight, ok := performanceInsight(metrics); ok {
		insights = append(insights, insight)
	}

	return insights
}

// ratingInsight flags buy-rated and sell-rated holdings. A rating containing
// both "buy" and "sell" counts as sell-rated.
func ratingInsight(h models.EnrichedHolding) (models.Insight, bool) {
	if h.MarketData == nil || h.MarketData.AnalystRating == nil {
		return models.Insight{}, false
	}

	rating := strings.ToLower(*h.MarketData.AnalystRating)
	message := fmt.Sprintf("%s has analyst rating: %s", h.Ticker, *h.MarketData.AnalystRating)

	switch {
	case strings.Contains(rating, "buy") && !strings.Contains(rating, "sell"):
		return models.Insight{
			Type:     models.InsightBuyRated,
			Ticker:   h.Ticker,
			Message:  message,
			Severity: models.SeverityInfo,
		}, true
	case strings.Contains(rating, "sell"):
		return models.Insight{
			Type:     models.InsightSellRated,
			Ticker:   h.Ticker,
			Message:  message,
			Severity: models.SeverityWarning,
		}, true
	}
	return models.Insight{}, false
}

// rangeInsight flags holdings trading near their 52-week high or low. Both
// bounds must be present and the range must be positive.
func rangeInsight(h models.EnrichedHolding) (models.Insight, bool) {
	if h.CurrentPrice == 0 || h.MarketData == nil ||
		h.MarketData.Week52High == nil || h.MarketData.Week52Low == nil {
		return models.Insight{}, false
	}

	high := *h.MarketData.Week52High
	low := *h.MarketData.Week52Low
	if high <= low {
		return models.Insight{}, false
	}

	position := (h.CurrentPrice - low) / (high - low)
	switch {
	case position > nearHighPosition:
		return models.Insight{
			Type:     models.InsightNearHigh,
			Ticker:   h.Ticker,
			Message:  fmt.Sprintf("%s is trading near its 52-week high", h.Ticker),
			Severity: models.SeverityInfo,
		}, true
	case position < nearLowPosition:
		return models.Insight{
			Type:     models.InsightNearLow,
			Ticker:   h.Ticker,
			Message:  fmt.Sprintf("%s is trading near its 52-week low", h.Ticker),
			Severity: models.SeverityWarning,
		}, true
	}
	return models.Insight{}, false
}

// concentrationInsight flags a single holding above 30% of portfolio value.
func concentrationInsight(metrics models.PortfolioMetrics) (models.Insight, bool) {
	if len(metrics.TopHoldings) == 0 || metrics.TopHoldings[0].PercentOfPortfolio <= concentrationThreshold {
		return models.Insight{}, false
	}

	top := metrics.TopHoldings[0]
	return models.Insight{
		Type:     models.InsightConcentration,
		Ticker:   top.Ticker,
		Message:  fmt.Sprintf("High concentration in %s (%.1f%% of portfolio)", top.Ticker, top.PercentOfPortfolio),
		Severity: models.SeverityWarning,
	}, true
}

// performanceInsight reports overall gain/loss beyond ±10%. The two bands
// are mutually exclusive; nothing is emitted between them.
func performanceInsight(metrics models.PortfolioMetrics) (models.Insight, bool) {
	switch {
	case metrics.TotalGainLossPercent > performanceThreshold:
		return models.Insight{
			Type:     models.InsightPerformance,
			Message:  fmt.Sprintf("Portfolio showing strong performance (+%.2f%%)", metrics.TotalGainLossPercent),
			Severity: models.SeveritySuccess,
		}, true
	case metrics.TotalGainLossPercent < -performanceThreshold:
		return models.Insight{
			Type:     models.InsightPerformance,
			Message:  fmt.Sprintf("Portfolio underperforming (%.2f%%)", metrics.TotalGainLossPercent),
			Severity: models.SeverityError,
		}, true
	}
	return models.Insight{}, false
}
