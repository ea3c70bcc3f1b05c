package domain

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format the provider uses for all dates.
const DateLayout = "2006-01-02"

// RateSet is one published set of exchange rates for a base currency.
// Immutable once constructed.
type RateSet struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// ConversionResult is the typed outcome of a currency conversion.
// Success=false means ConvertedAmount and Rate carry no meaning and
// ErrorMessage/StatusCode describe what went wrong.
type ConversionResult struct {
	Success         bool            `json:"success"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Rate            decimal.Decimal `json:"conversionRate"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	StatusCode      int             `json:"statusCode"`
}

// DailyRates maps currency codes to their rate for a single day.
type DailyRates map[string]decimal.Decimal

// HistoricalSeries holds provider rates for every business day in
// [StartDate, EndDate]. Keys of ByDate are yyyy-MM-dd strings.
type HistoricalSeries struct {
	Base      string                `json:"base"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	ByDate    map[string]DailyRates `json:"rates"`
}

// PaginatedHistoricalResult is one page of a historical series.
// TotalCount always reflects the full series, whichever page was asked for.
type PaginatedHistoricalResult struct {
	Success      bool                  `json:"success"`
	PageNumber   int                   `json:"pageNumber"`
	PageSize     int                   `json:"pageSize"`
	TotalCount   int                   `json:"totalCount"`
	Rates        map[string]DailyRates `json:"rates"`
	ErrorMessage string                `json:"errorMessage,omitempty"`
}
