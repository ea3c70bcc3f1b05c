package handler

import (
	"errors"
	"net/http"
	"strings"

	"currencyconverter/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "base")))

	set, err := h.service.GetLatestRates(r.Context(), base)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCurrencyCode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetLatest", "base": base}).Error("failed to fetch latest rates")
			writeError(w, http.StatusBadGateway, "failed to fetch latest rates")
			return
		}
		msg := "ups, couldn't get latest rates this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetLatest", "base": base}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, set)
}
