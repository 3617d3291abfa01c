package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arscode/arscode-backend/api/responses"
	"github.com/arscode/arscode-backend/api/validators"
	couponsvc "github.com/arscode/arscode-backend/internal/coupons"
	"github.com/arscode/arscode-backend/pkg/logger"
)

type createCouponRequest struct {
	Code            string     `json:"code" validate:"required,max=64"`
	DiscountPercent int        `json:"discount_percent" validate:"required,min=1,max=100"`
	ExpiresAt       *time.Time `json:"expires_at"`
	UsageLimit      int        `json:"usage_limit" validate:"gte=0"`
}

// CreateCoupon registers a coupon code.
func CreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := svc.Create(r.Context(), couponsvc.CreateCouponInput{
			Code:            payload.Code,
			DiscountPercent: payload.DiscountPercent,
			ExpiresAt:       payload.ExpiresAt,
			UsageLimit:      payload.UsageLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// ListCoupons returns every coupon with its redemption counters.
func ListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coupons, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

// DeactivateCoupon turns a coupon off.
func DeactivateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if err := svc.Deactivate(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"code": couponsvc.NormalizeCode(code), "status": "inactive"})
	}
}
