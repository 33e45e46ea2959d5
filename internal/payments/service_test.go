package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
)

type stubStripeClient struct {
	createParams *stripe.PaymentIntentParams
	createResult *stripe.PaymentIntent
	createErr    error

	getID     string
	getParams *stripe.PaymentIntentParams
	getResult *stripe.PaymentIntent
	getErr    error
}

func (s *stubStripeClient) CreateIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.createParams = params
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResult, nil
}

func (s *stubStripeClient) GetIntent(ctx context.Context, id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.getID = id
	s.getParams = params
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getResult, nil
}

func newTestService(t *testing.T, client StripePaymentClient) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Client: client, DefaultCurrency: "aud"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateIntent(t *testing.T) {
	t.Parallel()

	client := &stubStripeClient{
		createResult: &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"},
	}
	svc := newTestService(t, client)

	intent, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		Amount:       decimal.RequireFromString("84.50"),
		ReceiptEmail: "priya@example.com",
		Metadata: IntentMetadata{
			OrderID:      "DWT-ABC123-XY7Q",
			CustomerName: "Priya Sharma",
		},
	})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if intent.ClientSecret != "pi_123_secret" || intent.PaymentIntentID != "pi_123" {
		t.Fatalf("unexpected intent %+v", intent)
	}

	params := client.createParams
	if got := *params.Amount; got != 8450 {
		t.Fatalf("amount = %d, want 8450", got)
	}
	if got := *params.Currency; got != "aud" {
		t.Fatalf("currency = %q, want aud", got)
	}
	if params.AutomaticPaymentMethods == nil || !*params.AutomaticPaymentMethods.Enabled {
		t.Fatal("expected automatic payment methods enabled")
	}
	if got := *params.ReceiptEmail; got != "priya@example.com" {
		t.Fatalf("receipt email = %q", got)
	}
	if params.Metadata["orderId"] != "DWT-ABC123-XY7Q" {
		t.Fatalf("metadata = %v", params.Metadata)
	}
	if _, ok := params.Metadata["specialInstructions"]; ok {
		t.Fatal("blank metadata values must be omitted")
	}
}

func TestCreateIntentRounding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount string
		cents  int64
	}{
		{"169.00", 16900},
		{"0.01", 1},
		{"10.005", 1001},
		{"10.004", 1000},
	}

	for _, tc := range cases {
		client := &stubStripeClient{createResult: &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "s"}}
		svc := newTestService(t, client)

		_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
			Amount: decimal.RequireFromString(tc.amount),
		})
		if err != nil {
			t.Fatalf("CreateIntent(%s): %v", tc.amount, err)
		}
		if got := *client.createParams.Amount; got != tc.cents {
			t.Fatalf("amount %s: cents = %d, want %d", tc.amount, got, tc.cents)
		}
	}
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubStripeClient{})

	for _, amount := range []string{"0", "-5"} {
		_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
			Amount: decimal.RequireFromString(amount),
		})
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
		if coded.Message() != "Invalid amount" {
			t.Fatalf("amount %s: message = %q", amount, coded.Message())
		}
	}
}

func TestCreateIntentSurfacesProcessorMessage(t *testing.T) {
	t.Parallel()

	client := &stubStripeClient{
		createErr: &stripe.Error{Msg: "Your card was declined."},
	}
	svc := newTestService(t, client)

	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		Amount: decimal.RequireFromString("10.00"),
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if coded.Message() != "Your card was declined." {
		t.Fatalf("message = %q", coded.Message())
	}
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	client := &stubStripeClient{
		getResult: &stripe.PaymentIntent{
			Status:   stripe.PaymentIntentStatusSucceeded,
			Amount:   8450,
			Currency: stripe.CurrencyAUD,
		},
	}
	svc := newTestService(t, client)

	status, err := svc.GetStatus(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if client.getID != "pi_123" {
		t.Fatalf("fetched id = %q", client.getID)
	}
	if client.getParams == nil {
		t.Fatal("params must be non-nil so the request carries the context")
	}
	if status.Status != "succeeded" {
		t.Fatalf("status = %q", status.Status)
	}
	if !status.Amount.Equal(decimal.RequireFromString("84.50")) {
		t.Fatalf("amount = %s, want 84.50", status.Amount)
	}
	if status.Currency != "aud" {
		t.Fatalf("currency = %q", status.Currency)
	}
}

func TestGetStatusRepeatedReadsAgree(t *testing.T) {
	t.Parallel()

	client := &stubStripeClient{
		getResult: &stripe.PaymentIntent{
			Status:   stripe.PaymentIntentStatusProcessing,
			Amount:   16900,
			Currency: stripe.CurrencyAUD,
		},
	}
	svc := newTestService(t, client)

	first, err := svc.GetStatus(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	second, err := svc.GetStatus(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}

	if first.Status != second.Status || first.Currency != second.Currency {
		t.Fatalf("reads disagree: %+v vs %+v", first, second)
	}
	if !first.Amount.Equal(second.Amount) {
		t.Fatalf("amounts disagree: %s vs %s", first.Amount, second.Amount)
	}
}

func TestGetStatusRequiresID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubStripeClient{})
	_, err := svc.GetStatus(context.Background(), "  ")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetStatusWrapsTransportError(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubStripeClient{getErr: errors.New("connection reset")})
	_, err := svc.GetStatus(context.Background(), "pi_123")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewServiceRequiresClient(t *testing.T) {
	t.Parallel()

	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected missing client to be rejected")
	}
}
