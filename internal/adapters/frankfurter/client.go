package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"currencyconverter/internal/domain"

	"github.com/shopspring/decimal"
)

// Client talks to the Frankfurter exchange rate API.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type latestResponse struct {
	Amount decimal.Decimal            `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

type rangeResponse struct {
	Amount    decimal.Decimal              `json:"amount"`
	Base      string                       `json:"base"`
	StartDate string                       `json:"start_date"`
	EndDate   string                       `json:"end_date"`
	Rates     map[string]domain.DailyRates `json:"rates"`
}

// Latest fetches the most recently published rate set for a base currency.
func (c *Client) Latest(ctx context.Context, base string) (domain.RateSet, error) {
	q := url.Values{}
	q.Set("base", base)

	var body latestResponse
	if err := c.getJSON(ctx, "/latest", q, &body); err != nil {
		return domain.RateSet{}, err
	}

	if body.Rates == nil {
		body.Rates = map[string]decimal.Decimal{}
	}
	return domain.RateSet{Base: body.Base, Date: body.Date, Rates: body.Rates}, nil
}

// Convert asks the provider to scale the latest from→to rate by amount.
// The converted amount comes back under the target code in Rates.
func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (domain.RateSet, error) {
	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("from", from)
	q.Set("to", to)

	var body latestResponse
	if err := c.getJSON(ctx, "/latest", q, &body); err != nil {
		return domain.RateSet{}, err
	}

	if body.Rates == nil {
		body.Rates = map[string]decimal.Decimal{}
	}
	return domain.RateSet{Base: body.Base, Date: body.Date, Rates: body.Rates}, nil
}

// Range fetches the full rate series for [start, end], one call per range.
// Dates are yyyy-MM-dd.
func (c *Client) Range(ctx context.Context, base, start, end string) (domain.HistoricalSeries, error) {
	q := url.Values{}
	q.Set("base", base)

	var body rangeResponse
	if err := c.getJSON(ctx, "/"+start+".."+end, q, &body); err != nil {
		return domain.HistoricalSeries{}, err
	}

	if body.Rates == nil {
		body.Rates = map[string]domain.DailyRates{}
	}
	return domain.HistoricalSeries{
		Base:      body.Base,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		ByDate:    body.Rates,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse provider URL: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %q: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamError{StatusCode: resp.StatusCode}
	}

	// A 2xx with a broken body is not worth retrying.
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
