package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	"github.com/taskerway/dawat-storefront/pkg/metrics"
)

// IntentMetadata is the order context attached to every payment intent so a
// charge can be traced back to its order from the Stripe dashboard alone.
type IntentMetadata struct {
	OrderID             string
	CustomerName        string
	Address             string
	Phone               string
	SpecialInstructions string
}

// CreateIntentInput captures what is needed to open a payment intent.
type CreateIntentInput struct {
	Amount       decimal.Decimal
	Currency     string
	ReceiptEmail string
	Metadata     IntentMetadata
}

// Intent is the client-facing handle for a created payment intent.
type Intent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// Status reports the processor-side state of a payment intent. Amount is
// converted back from minor units to dollars.
type Status struct {
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Service defines the payment gateway surface.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error)
	GetStatus(ctx context.Context, id string) (*Status, error)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Client          StripePaymentClient
	DefaultCurrency string
	Metrics         *metrics.CheckoutMetrics
	Logger          *logger.Logger
}

type service struct {
	client   StripePaymentClient
	currency string
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, errors.New("stripe client required")
	}
	currency := strings.TrimSpace(strings.ToLower(params.DefaultCurrency))
	if currency == "" {
		currency = "aud"
	}
	return &service{
		client:   params.Client,
		currency: currency,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// CreateIntent opens a payment intent for the given amount. The amount is in
// dollars and is converted to minor units at this boundary, the only place in
// the system where money leaves decimal form.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid amount")
	}

	currency := strings.TrimSpace(strings.ToLower(input.Currency))
	if currency == "" {
		currency = s.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(input.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if email := strings.TrimSpace(input.ReceiptEmail); email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	addMetadata(params, "orderId", input.Metadata.OrderID)
	addMetadata(params, "customerName", input.Metadata.CustomerName)
	addMetadata(params, "address", input.Metadata.Address)
	addMetadata(params, "phone", input.Metadata.Phone)
	addMetadata(params, "specialInstructions", input.Metadata.SpecialInstructions)

	intent, err := s.client.CreateIntent(ctx, params)
	if err != nil {
		return nil, wrapStripeErr(err, "create payment intent")
	}

	s.metrics.IncIntentCreated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "payment_intent_id", intent.ID), "payment.intent_created")
	}

	return &Intent{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// GetStatus fetches the current processor-side state of an intent.
func (s *service) GetStatus(ctx context.Context, id string) (*Status, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id required")
	}

	intent, err := s.client.GetIntent(ctx, id, &stripe.PaymentIntentParams{})
	if err != nil {
		return nil, wrapStripeErr(err, "retrieve payment intent")
	}

	return &Status{
		Status:   string(intent.Status),
		Amount:   decimal.New(intent.Amount, -2),
		Currency: string(intent.Currency),
	}, nil
}

// toMinorUnits converts a dollar amount to cents, rounding half away from
// zero the way a register would.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func addMetadata(params *stripe.PaymentIntentParams, key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	params.AddMetadata(key, value)
}

// wrapStripeErr surfaces the processor's own message when Stripe rejected the
// call, and a generic one otherwise.
func wrapStripeErr(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, stripeErr.Msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
