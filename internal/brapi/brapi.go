// Package brapi implements the external dividend-feed and price-oracle
// collaborators against the brapi.dev API. The client carries its own
// injected rate limiter so concurrent callers share one request budget
// instead of module-level timer state.
package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gfranca/b3-ledger-backend/internal/apperrors"
	"github.com/gfranca/b3-ledger-backend/internal/model"
)

// DividendEvent is one dividend announcement from the external feed.
// ExDate is zero when the source did not report one; callers fall back to
// the payment date as the eligibility reference.
type DividendEvent struct {
	Ticker         string
	PaymentDate    time.Time
	ExDate         time.Time
	AmountPerShare float64
	Type           string
	Label          string
}

// Feed defines the interface for fetching dividend events and last-traded
// prices. This interface enables dependency injection and testing with
// mock implementations.
type Feed interface {
	FetchDividends(ctx context.Context, ticker string) ([]DividendEvent, error)
	LastPrice(ctx context.Context, ticker string) (float64, error)
	Source() string
}

// Client provides methods for fetching financial data from brapi.dev.
// It wraps an HTTP client with a shared rate limiter and a bounded
// request timeout.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new brapi.dev client. requestsPerSecond bounds the
// outbound request rate across all callers of this client instance.
func NewClient(baseURL, token string, requestsPerSecond float64, timeout time.Duration) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Source identifies this feed in persisted dividend records.
func (c *Client) Source() string { return "brapi.dev" }

// FetchDividends retrieves the dividend history of a ticker. Labels are
// mapped to the canonical dividend types (JCP/JSCP -> JCP, RENDIMENTO ->
// INCOME, otherwise DIVIDEND); entries without a parseable payment date
// are dropped.
func (c *Client) FetchDividends(ctx context.Context, ticker string) ([]DividendEvent, error) {
	result, err := c.quote(ctx, ticker, true)
	if err != nil {
		return nil, err
	}

	if result.DividendsData == nil {
		return []DividendEvent{}, nil
	}

	raw := append(result.DividendsData.CashDividends, result.DividendsData.StockDividends...)

	events := make([]DividendEvent, 0, len(raw))
	for _, div := range raw {
		payment, ok := parseISODate(div.PaymentDate)
		if !ok {
			continue
		}

		event := DividendEvent{
			Ticker:         normalizeTicker(ticker),
			PaymentDate:    payment,
			AmountPerShare: div.Rate,
			Type:           mapLabel(div.Label),
			Label:          div.Label,
		}

		// lastDatePrior is the last date with dividend rights; absent for
		// some sources, in which case the event keeps a zero ExDate.
		if ex, ok := parseISODate(div.LastDatePrior); ok {
			event.ExDate = ex
		}

		events = append(events, event)
	}

	return events, nil
}

// LastPrice retrieves the last traded price of a ticker.
func (c *Client) LastPrice(ctx context.Context, ticker string) (float64, error) {
	result, err := c.quote(ctx, ticker, false)
	if err != nil {
		return 0, err
	}

	if result.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("%w: no price for %s", apperrors.ErrPriceUnavailable, ticker)
	}

	return result.RegularMarketPrice, nil
}

func (c *Client) quote(ctx context.Context, ticker string, dividends bool) (quoteResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return quoteResult{}, err
	}

	query := url.Values{}
	if dividends {
		query.Set("dividends", "true")
	}
	if c.token != "" {
		query.Set("token", c.token)
	}

	endpoint := fmt.Sprintf("%s/api/quote/%s", c.baseURL, url.PathEscape(normalizeTicker(ticker)))
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return quoteResult{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return quoteResult{}, fmt.Errorf("%w: %v", apperrors.ErrDividendFeedUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return quoteResult{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return quoteResult{}, fmt.Errorf("%w: brapi status %d for %s",
			apperrors.ErrDividendFeedUnavailable, resp.StatusCode, ticker)
	}

	var response quoteResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return quoteResult{}, err
	}

	if response.Error != nil {
		return quoteResult{}, fmt.Errorf("brapi error: %s", response.Message)
	}
	if len(response.Results) == 0 {
		return quoteResult{}, fmt.Errorf("%w: %s", apperrors.ErrTickerNotFound, ticker)
	}

	return response.Results[0], nil
}

// mapLabel maps the feed's free-text label onto a canonical dividend type
// by keyword match.
func mapLabel(label string) string {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "JCP"), strings.Contains(upper, "JSCP"):
		return model.DividendTypeJCP
	case strings.Contains(upper, "RENDIMENTO"):
		return model.DividendTypeIncome
	default:
		return model.DividendTypeDividend
	}
}

// parseISODate handles brapi's "2025-09-22T00:00:00.000Z" timestamps as
// well as bare dates.
func parseISODate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if idx := strings.Index(raw, "T"); idx > 0 {
		raw = raw[:idx]
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// normalizeTicker strips the Yahoo-style .SA suffix; brapi uses bare B3
// symbols.
func normalizeTicker(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	return strings.TrimSuffix(ticker, ".SA")
}
