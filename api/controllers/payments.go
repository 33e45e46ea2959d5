package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/taskerway/dawat-storefront/api/responses"
	"github.com/taskerway/dawat-storefront/internal/payments"
	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
	"github.com/taskerway/dawat-storefront/pkg/logger"
)

// createPaymentIntentRequest is the storefront's original wire contract:
// flat fields, amount in dollars, everything but amount optional.
type createPaymentIntentRequest struct {
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	CustomerEmail       string          `json:"customerEmail"`
	OrderID             string          `json:"orderId"`
	CustomerName        string          `json:"customerName"`
	Address             string          `json:"address"`
	Phone               string          `json:"phone"`
	SpecialInstructions string          `json:"specialInstructions"`
}

// CreatePaymentIntent keeps the original bare response shapes: the deployed
// storefront reads them without an envelope.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer io.Copy(io.Discard, r.Body)

		var payload createPaymentIntentRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteRaw(w, http.StatusBadRequest, map[string]string{"error": "Invalid amount"})
			return
		}

		intent, err := svc.CreateIntent(r.Context(), payments.CreateIntentInput{
			Amount:       payload.Amount,
			Currency:     payload.Currency,
			ReceiptEmail: payload.CustomerEmail,
			Metadata: payments.IntentMetadata{
				OrderID:             payload.OrderID,
				CustomerName:        payload.CustomerName,
				Address:             payload.Address,
				Phone:               payload.Phone,
				SpecialInstructions: payload.SpecialInstructions,
			},
		})
		if err != nil {
			if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeValidation {
				responses.WriteRaw(w, http.StatusBadRequest, map[string]string{"error": "Invalid amount"})
				return
			}
			if logg != nil {
				logg.Error(r.Context(), "payment.intent_create_failed", err)
			}
			responses.WriteRaw(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to create payment intent",
				"message": publicMessage(err),
			})
			return
		}

		responses.WriteRaw(w, http.StatusOK, intent)
	}
}

// PaymentStatus returns the processor-side status of an intent, bare-shaped.
func PaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.GetStatus(r.Context(), chi.URLParam(r, "paymentIntentId"))
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "payment.status_failed", err)
			}
			responses.WriteRaw(w, http.StatusInternalServerError, map[string]string{
				"error": "Failed to retrieve payment status",
			})
			return
		}
		responses.WriteRaw(w, http.StatusOK, status)
	}
}

// publicMessage surfaces the processor's message without the wrap chain.
func publicMessage(err error) string {
	if coded := pkgerrors.As(err); coded != nil && coded.Message() != "" {
		return coded.Message()
	}
	return err.Error()
}
