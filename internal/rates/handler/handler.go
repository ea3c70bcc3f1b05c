package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"currencyconverter/internal/domain"

	"github.com/shopspring/decimal"
)

// RateService is the core query API the transport layer talks to.
type RateService interface {
	GetLatestRates(ctx context.Context, base string) (domain.RateSet, error)
	Convert(ctx context.Context, from, to string, amount decimal.Decimal) domain.ConversionResult
	GetHistoricalRates(ctx context.Context, base string, start, end time.Time, page, pageSize int) domain.PaginatedHistoricalResult
}

type Handler struct {
	service RateService
}

func NewRateHandler(service RateService) *Handler {
	return &Handler{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
