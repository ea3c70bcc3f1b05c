package handler

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))

	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}
	if len(from) != 3 || len(to) != 3 {
		writeError(w, http.StatusBadRequest, "from and to must be three-letter currency codes")
		return
	}

	// The core never faults here: the result carries its own status.
	result := h.service.Convert(r.Context(), from, to, amount)
	writeJSON(w, result.StatusCode, result)
}
