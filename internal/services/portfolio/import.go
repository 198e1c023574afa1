package portfolio

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// Import parses an uploaded portfolio file (JSON or CSV), validates it and
// stores the resulting portfolio. Format is detected from the filename
// extension, falling back to content sniffing.
func (s *Service) Import(ctx context.Context, filename string, data []byte, opts models.ImportOptions) (*models.Portfolio, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("missing required field: client_id")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}

	format := detectFormat(filename, data)

	var (
		portfolio *models.Portfolio
		err       error
	)
	switch format {
	case "json":
		portfolio, err = parseJSON(data)
	case "csv":
		portfolio, err = parseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	portfolio.ID = newPortfolioID()
	portfolio.ClientID = opts.ClientID
	if opts.Name != "" {
		portfolio.Name = opts.Name
	}
	if portfolio.Name == "" {
		portfolio.Name = strings.TrimSuffix(filename, "."+format)
	}
	if opts.Currency != "" {
		portfolio.Currency = opts.Currency
	}
	if portfolio.Currency == "" {
		portfolio.Currency = "USD"
	}
	if portfolio.AsOfDate == "" {
		portfolio.AsOfDate = time.Now().Format("2006-01-02")
	}
	portfolio.Metadata.Format = format
	portfolio.Metadata.ImportedAt = time.Now()

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", portfolio.ID).
		Str("format", format).
		Str("source", portfolio.Metadata.Source).
		Int("holdings", len(portfolio.Holdings)).
		Msg("Portfolio imported")

	return portfolio, nil
}

func detectFormat(filename string, data []byte) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return "json"
	case strings.HasSuffix(lower, ".csv"):
		return "csv"
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "json"
	}
	if strings.Contains(trimmed, ",") {
		return "csv"
	}
	return ""
}

// jsonUpload is the accepted JSON upload shape. Field names mirror the
// export format of the web uploader.
type jsonUpload struct {
	ClientID string           `json:"client_id"`
	Name     string           `json:"portfolio_name"`
	Currency string           `json:"currency"`
	AsOfDate string           `json:"as_of_date"`
	Holdings []models.Holding `json:"holdings"`
}

func parseJSON(data []byte) (*models.Portfolio, error) {
	var upload jsonUpload
	if err := json.Unmarshal(data, &upload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validateHoldings(upload.Holdings); err != nil {
		return nil, err
	}
	return &models.Portfolio{
		ClientID: upload.ClientID,
		Name:     upload.Name,
		Currency: upload.Currency,
		AsOfDate: upload.AsOfDate,
		Holdings: upload.Holdings,
		Metadata: models.PortfolioMetadata{Source: models.SourceUpload},
	}, nil
}

// parseCSV handles two layouts: broker exports with computed valuation
// columns (Instrument/Qty./Avg. cost/LTP), and a generic
// ticker/quantity/purchase_price layout with optional date and price
// columns. Broker rows become preserve-mode holdings.
func parseCSV(data []byte) (*models.Portfolio, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must contain a header row and at least one holding")
	}

	header := normalizeHeader(records[0])

	if cols, ok := brokerColumns(header); ok {
		return parseBrokerCSV(records[1:], cols)
	}
	return parseGenericCSV(records[1:], header)
}

func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}

func indexOf(header []string, names ...string) int {
	for i, c := range header {
		for _, n := range names {
			if c == n {
				return i
			}
		}
	}
	return -1
}

type brokerCols struct {
	instrument int
	qty        int
	avgCost    int
	ltp        int
}

func brokerColumns(header []string) (brokerCols, bool) {
	cols := brokerCols{
		instrument: indexOf(header, "instrument"),
		qty:        indexOf(header, "qty.", "qty"),
		avgCost:    indexOf(header, "avg. cost", "avg cost"),
		ltp:        indexOf(header, "ltp"),
	}
	ok := cols.instrument >= 0 && cols.qty >= 0 && cols.avgCost >= 0 && cols.ltp >= 0
	return cols, ok
}

func parseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseBrokerCSV(rows [][]string, cols brokerCols) (*models.Portfolio, error) {
	holdings := make([]models.Holding, 0, len(rows))
	for n, row := range rows {
		line := n + 2
		ticker := field(row, cols.instrument)
		if ticker == "" {
			return nil, fmt.Errorf("row %d: missing instrument", line)
		}
		qty, err := parseFloat(field(row, cols.qty))
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("row %d: invalid quantity for %s", line, ticker)
		}
		avgCost, err := parseFloat(field(row, cols.avgCost))
		if err != nil || avgCost <= 0 {
			return nil, fmt.Errorf("row %d: invalid avg. cost for %s", line, ticker)
		}
		ltp, err := parseFloat(field(row, cols.ltp))
		if err != nil || ltp <= 0 {
			return nil, fmt.Errorf("row %d: invalid LTP for %s", line, ticker)
		}

		h := models.Holding{
			Ticker:        ticker,
			Quantity:      qty,
			PurchasePrice: avgCost,
			CurrentPrice:  ltp,
		}
		h.CostBasis = qty * avgCost
		h.CurrentValue = qty * ltp
		h.GainLoss = h.CurrentValue - h.CostBasis
		if h.CostBasis > 0 {
			h.GainLossPercent = h.GainLoss / h.CostBasis * 100
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings found in CSV")
	}
	return &models.Portfolio{
		Holdings: holdings,
		Metadata: models.PortfolioMetadata{Source: models.SourceBrokerImport},
	}, nil
}

func parseGenericCSV(rows [][]string, header []string) (*models.Portfolio, error) {
	tickerCol := indexOf(header, "ticker", "symbol")
	qtyCol := indexOf(header, "quantity", "shares")
	priceCol := indexOf(header, "purchase_price", "purchaseprice", "cost")
	dateCol := indexOf(header, "purchase_date", "purchasedate")
	currentCol := indexOf(header, "current_price", "currentprice")

	if tickerCol < 0 {
		return nil, fmt.Errorf("CSV header missing ticker/symbol column")
	}
	if qtyCol < 0 {
		return nil, fmt.Errorf("CSV header missing quantity column")
	}
	if priceCol < 0 {
		return nil, fmt.Errorf("CSV header missing purchase_price column")
	}

	holdings := make([]models.Holding, 0, len(rows))
	for n, row := range rows {
		line := n + 2
		ticker := field(row, tickerCol)
		if ticker == "" {
			return nil, fmt.Errorf("row %d: missing ticker/symbol", line)
		}
		qty, err := parseFloat(field(row, qtyCol))
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("row %d: invalid quantity for %s", line, ticker)
		}
		price, err := parseFloat(field(row, priceCol))
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("row %d: invalid purchase price for %s", line, ticker)
		}

		h := models.Holding{
			Ticker:        ticker,
			Quantity:      qty,
			PurchasePrice: price,
			PurchaseDate:  field(row, dateCol),
		}
		if cp := field(row, currentCol); cp != "" {
			current, err := parseFloat(cp)
			if err != nil || current <= 0 {
				return nil, fmt.Errorf("row %d: invalid current price for %s", line, ticker)
			}
			h.CurrentPrice = current
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings found in CSV")
	}
	return &models.Portfolio{
		Holdings: holdings,
		Metadata: models.PortfolioMetadata{Source: models.SourceUpload},
	}, nil
}
