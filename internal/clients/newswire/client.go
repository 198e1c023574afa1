// Package newswire generates per-ticker news summaries via the Gemini API
package newswire

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const DefaultModel = "gemini-3-flash-preview"

// Client implements the NewsClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini-backed news client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func buildNewsPrompt(tickers []string) string {
	var sb strings.Builder
	sb.WriteString("Provide a brief news summary for each of these stocks: ")
	sb.WriteString(strings.Join(tickers, ", "))
	sb.WriteString("\nFor each stock, provide in 1-2 sentences:\n")
	sb.WriteString("- Latest headline or development (last 7 days)\n")
	sb.WriteString("- Current sentiment (bullish/bearish/neutral) based on recent news\n\n")
	sb.WriteString("Format: Ticker: Brief news summary. Sentiment: [bullish/bearish/neutral]")
	return sb.String()
}

// GetPortfolioNews prompts Gemini for recent news on the given tickers and
// parses the line-oriented response into per-ticker summaries. A generation
// failure fails the whole call.
func (c *Client) GetPortfolioNews(ctx context.Context, tickers []string) ([]models.TickerNews, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	c.logger.Debug().Str("model", c.model).Int("tickers", len(tickers)).Msg("Fetching portfolio news")

	contents := genai.Text(buildNewsPrompt(tickers))
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate news summary: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return nil, err
	}

	return parsePortfolioNews(text, tickers), nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

var sentimentPattern = regexp.MustCompile(`(?i)sentiment:?\s*\[?(bullish|bearish|neutral)\]?`)

// parsePortfolioNews extracts one summary per requested ticker from the
// model's line-oriented response. Tickers the model skipped get a neutral
// placeholder so callers always receive one entry per ticker.
func parsePortfolioNews(text string, tickers []string) []models.TickerNews {
	summaries := make(map[string][]string, len(tickers))
	current := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if ticker := matchTicker(line, tickers); ticker != "" {
			current = ticker
		}
		if current != "" {
			summaries[current] = append(summaries[current], line)
		}
	}

	items := make([]models.TickerNews, 0, len(tickers))
	for _, ticker := range tickers {
		lines, ok := summaries[ticker]
		if !ok {
			items = append(items, models.TickerNews{
				Ticker:    ticker,
				Summary:   "No recent news available.",
				Sentiment: models.SentimentNeutral,
			})
			continue
		}

		summary := strings.Join(lines, " ")
		sentiment := models.SentimentNeutral
		if m := sentimentPattern.FindStringSubmatch(summary); m != nil {
			sentiment = strings.ToLower(m[1])
			summary = strings.TrimSpace(sentimentPattern.ReplaceAllString(summary, ""))
		}
		summary = strings.TrimSpace(strings.TrimSuffix(summary, "."))
		if summary != "" {
			summary += "."
		}

		items = append(items, models.TickerNews{
			Ticker:    ticker,
			Summary:   cleanTickerPrefix(summary, ticker),
			Sentiment: sentiment,
		})
	}

	return items
}

// matchTicker returns the first requested ticker the line refers to, or "".
func matchTicker(line string, tickers []string) string {
	upper := strings.ToUpper(line)
	for _, ticker := range tickers {
		t := strings.ToUpper(ticker)
		if strings.HasPrefix(upper, t+":") ||
			strings.HasPrefix(upper, "**"+t+"**") ||
			strings.HasPrefix(upper, "- "+t) ||
			containsWord(upper, t) {
			return ticker
		}
	}
	return ""
}

// containsWord reports whether s contains w as a standalone word.
func containsWord(s, w string) bool {
	idx := strings.Index(s, w)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isWordChar(s[idx-1])
	afterIdx := idx + len(w)
	after := afterIdx >= len(s) || !isWordChar(s[afterIdx])
	return before && after
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// cleanTickerPrefix strips markdown and a leading "TICKER:" from a summary.
func cleanTickerPrefix(summary, ticker string) string {
	summary = strings.ReplaceAll(summary, "**", "")
	for _, prefix := range []string{ticker + ":", strings.ToUpper(ticker) + ":"} {
		if strings.HasPrefix(summary, prefix) {
			summary = strings.TrimSpace(strings.TrimPrefix(summary, prefix))
			break
		}
	}
	return summary
}

var _ interfaces.NewsClient = (*Client)(nil)
