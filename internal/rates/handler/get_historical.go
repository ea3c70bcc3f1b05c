package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"currencyconverter/internal/domain"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

func (h *Handler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "base")))
	q := r.URL.Query()

	start, err := time.Parse(domain.DateLayout, q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be a yyyy-MM-dd date")
		return
	}
	end, err := time.Parse(domain.DateLayout, q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be a yyyy-MM-dd date")
		return
	}

	if start.After(end) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidDateRange.Error())
		return
	}

	page, err := queryInt(q.Get("page"), defaultPage)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(q.Get("page_size"), defaultPageSize)
	if err != nil || pageSize < 1 {
		writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
		return
	}

	result := h.service.GetHistoricalRates(r.Context(), base, start, end, page, pageSize)
	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
