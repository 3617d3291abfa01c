package controllers

import (
	"net/http"
	"strings"

	"github.com/arscode/arscode-backend/api/responses"
	"github.com/arscode/arscode-backend/api/validators"
	"github.com/arscode/arscode-backend/internal/reports"
	"github.com/arscode/arscode-backend/pkg/logger"
)

func reportPeriod(r *http.Request) reports.Period {
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return reports.PeriodDay
	}
	return reports.Period(strings.ToLower(raw))
}

// RevenueReport summarizes revenue for a period query parameter.
func RevenueReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Revenue(r.Context(), reportPeriod(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// TopProductsReport lists best sellers for a period.
func TopProductsReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.TopProducts(r.Context(), reportPeriod(r), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// DiscountPerformanceReport breaks down sales by applied discount percent.
func DiscountPerformanceReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.DiscountPerformance(r.Context(), reportPeriod(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
