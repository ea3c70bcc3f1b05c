package rates

import (
	"maps"
	"slices"

	"currencyconverter/internal/domain"
)

// paginate slices a historical series into one page: dates sorted ascending,
// skip (page-1)*pageSize, take pageSize. TotalCount always reflects the full
// series. A page past the end yields an empty map, not an error.
func paginate(series domain.HistoricalSeries, page, pageSize int) domain.PaginatedHistoricalResult {
	dates := slices.Sorted(maps.Keys(series.ByDate))

	offset := (page - 1) * pageSize
	pageRates := make(map[string]domain.DailyRates)
	if offset < len(dates) {
		end := min(offset+pageSize, len(dates))
		for _, d := range dates[offset:end] {
			pageRates[d] = series.ByDate[d]
		}
	}

	return domain.PaginatedHistoricalResult{
		Success:    true,
		PageNumber: page,
		PageSize:   pageSize,
		TotalCount: len(dates),
		Rates:      pageRates,
	}
}
