package api

import (
	"currencyconverter/internal/rates/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(rateHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Handle("/metrics", promhttp.Handler())

	router.Get("/api/v1/rates/latest/{base:[A-Za-z]{3}}", rateHandler.GetLatest)
	router.Get("/api/v1/rates/convert", rateHandler.Convert)
	router.Get("/api/v1/rates/historical/{base:[A-Za-z]{3}}", rateHandler.GetHistorical)
	return router
}
