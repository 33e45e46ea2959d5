package controllers

import (
	"net/http"

	"github.com/taskerway/dawat-storefront/api/responses"
	"github.com/taskerway/dawat-storefront/api/validators"
	checkoutsvc "github.com/taskerway/dawat-storefront/internal/checkout"
	"github.com/taskerway/dawat-storefront/internal/orders"
	"github.com/taskerway/dawat-storefront/pkg/logger"
)

type checkoutStartRequest struct {
	FullName            string `json:"fullName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	Suburb              string `json:"suburb"`
	Postcode            string `json:"postcode"`
	SpecialInstructions string `json:"specialInstructions"`
}

// CheckoutStart validates delivery details and opens the payment leg.
// Field-level validation lives in the details validator, not struct tags,
// because the messages are part of the storefront's form contract.
func CheckoutStart(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutStartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Start(r.Context(), sessionID, orders.CustomerDetails{
			FullName:            payload.FullName,
			Email:               payload.Email,
			Phone:               payload.Phone,
			StreetAddress:       payload.Address,
			Suburb:              payload.Suburb,
			Postcode:            payload.Postcode,
			SpecialInstructions: payload.SpecialInstructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// CheckoutConfirm runs the post-payment outcome check.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Confirm(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// CheckoutResume re-enters the outcome check after an off-site redirect.
func CheckoutResume(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Resume(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// CheckoutState returns the session's current checkout phase.
func CheckoutState(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.GetState(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
