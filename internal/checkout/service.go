package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/taskerway/dawat-storefront/internal/cart"
	"github.com/taskerway/dawat-storefront/internal/orders"
	"github.com/taskerway/dawat-storefront/internal/payments"
	"github.com/taskerway/dawat-storefront/pkg/config"
	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	pkgredis "github.com/taskerway/dawat-storefront/pkg/redis"
)

// State is the checkout phase for a session. Transitions only move forward
// except the payment-failure edge, which returns to collecting_payment_method.
type State string

const (
	StateCollectingDetails       State = "collecting_details"
	StateAwaitingPaymentIntent   State = "awaiting_payment_intent"
	StateCollectingPaymentMethod State = "collecting_payment_method"
	StateConfirmingPayment       State = "confirming_payment"
	StateSucceeded               State = "succeeded"
	StateFailed                  State = "failed"
)

// Outcome statuses reported after a confirm or resume check.
const (
	OutcomeSucceeded = "succeeded"
	OutcomePending   = "pending"
	OutcomeFailed    = "failed"
)

// Session is the durable checkout record. It lives in Redis so the flow
// survives page reloads and off-site payment redirects.
type Session struct {
	State           State         `json:"state"`
	Order           *orders.Order `json:"order,omitempty"`
	ClientSecret    string        `json:"clientSecret,omitempty"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	FailureMessage  string        `json:"failureMessage,omitempty"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Outcome is the result of a confirmation check.
type Outcome struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Order   *orders.Order `json:"order,omitempty"`
}

type sessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type cartAccess interface {
	Get(ctx context.Context, sessionID string) (cart.View, error)
	Clear(ctx context.Context, sessionID string) error
}

type paymentGateway interface {
	CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error)
	GetStatus(ctx context.Context, id string) (*payments.Status, error)
}

type orderFinalizer interface {
	Finalize(ctx context.Context, order *orders.Order)
}

// Service drives a session through checkout.
type Service interface {
	Start(ctx context.Context, sessionID string, details orders.CustomerDetails) (*Session, error)
	Confirm(ctx context.Context, sessionID string) (*Outcome, error)
	Resume(ctx context.Context, sessionID string) (*Outcome, error)
	GetState(ctx context.Context, sessionID string) (*Session, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Store     sessionStore
	Cart      cartAccess
	Payments  paymentGateway
	Orders    orderFinalizer
	Validator *orders.Validator
	Config    config.CheckoutConfig
	Logger    *logger.Logger
}

type service struct {
	store     sessionStore
	cart      cartAccess
	payments  paymentGateway
	orders    orderFinalizer
	validator *orders.Validator
	cfg       config.CheckoutConfig
	logg      *logger.Logger
}

// NewService builds the checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, errors.New("session store required")
	}
	if params.Cart == nil {
		return nil, errors.New("cart service required")
	}
	if params.Payments == nil {
		return nil, errors.New("payment gateway required")
	}
	if params.Orders == nil {
		return nil, errors.New("order finalizer required")
	}
	if params.Validator == nil {
		return nil, errors.New("details validator required")
	}
	return &service{
		store:     params.Store,
		cart:      params.Cart,
		payments:  params.Payments,
		orders:    params.Orders,
		validator: params.Validator,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// Start validates the delivery details, drafts the order and opens a payment
// intent. On failure the cart is untouched and any session already holding a
// draft keeps it, so the customer can correct and resubmit.
func (s *service) Start(ctx context.Context, sessionID string, details orders.CustomerDetails) (*Session, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	ctx = s.withSession(ctx, sessionID)

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.State == StateConfirmingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment confirmation is already in progress")
	}

	if fieldErrs := s.validator.Validate(details); len(fieldErrs) > 0 {
		// A session already holding a draft and client secret stays as it
		// is; a failed resubmission must not discard a live checkout.
		if current == nil || current.State == StateCollectingDetails {
			s.save(ctx, sessionID, &Session{State: StateCollectingDetails})
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please correct the highlighted fields").
			WithDetails(fieldErrs)
	}

	view, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	order := orders.BuildOrder(view, details)
	ctx = s.withOrder(ctx, order.OrderID)

	s.save(ctx, sessionID, &Session{State: StateAwaitingPaymentIntent, Order: order})

	intent, err := s.payments.CreateIntent(ctx, payments.CreateIntentInput{
		Amount:       order.Total,
		Currency:     s.cfg.Currency,
		ReceiptEmail: order.Email,
		Metadata: payments.IntentMetadata{
			OrderID:             order.OrderID,
			CustomerName:        order.CustomerName,
			Address:             order.Address,
			Phone:               order.Phone,
			SpecialInstructions: order.SpecialInstructions,
		},
	})
	if err != nil {
		// The draft is discarded; the cart and details survive.
		s.save(ctx, sessionID, &Session{State: StateCollectingDetails})
		return nil, err
	}

	order.PaymentIntentID = intent.PaymentIntentID
	session := &Session{
		State:           StateCollectingPaymentMethod,
		Order:           order,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.PaymentIntentID,
	}
	if err := s.save(ctx, sessionID, session); err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, "checkout.started")
	}
	return session, nil
}

// Confirm runs the post-payment outcome check. A Redis SetNX marker makes the
// confirmation single-flight per session; a concurrent confirm gets a
// conflict instead of a second finalization.
func (s *service) Confirm(ctx context.Context, sessionID string) (*Outcome, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	ctx = s.withSession(ctx, sessionID)

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Order == nil || session.PaymentIntentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment in progress for this session")
	}
	if session.State != StateCollectingPaymentMethod && session.State != StateConfirmingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting confirmation")
	}

	acquired, err := s.store.SetNX(ctx, pkgredis.ConfirmGuardKey(sessionID), session.PaymentIntentID, s.cfg.ConfirmGuardTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire confirmation guard")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a confirmation for this session is already in progress")
	}
	defer func() {
		if delErr := s.store.Del(ctx, pkgredis.ConfirmGuardKey(sessionID)); delErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "checkout.confirm_guard_release_failed")
		}
	}()

	session.State = StateConfirmingPayment
	s.save(ctx, sessionID, session)

	return s.settle(ctx, sessionID, session)
}

// Resume re-enters the outcome check after an off-site redirect. The session
// carries the intent id, so no client-side state is needed to finish.
func (s *service) Resume(ctx context.Context, sessionID string) (*Outcome, error) {
	return s.Confirm(ctx, sessionID)
}

// GetState returns the current checkout session, or a fresh
// collecting_details one when the session has none.
func (s *service) GetState(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	session, err := s.load(s.withSession(ctx, sessionID), sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &Session{State: StateCollectingDetails}, nil
	}
	return session, nil
}

// settle reads the processor-side status and moves the session accordingly.
// Finalization happens here and nowhere else.
func (s *service) settle(ctx context.Context, sessionID string, session *Session) (*Outcome, error) {
	status, err := s.payments.GetStatus(ctx, session.PaymentIntentID)
	if err != nil {
		session.State = StateCollectingPaymentMethod
		s.save(ctx, sessionID, session)
		return nil, err
	}

	switch status.Status {
	case "succeeded":
		order := session.Order
		ctx = s.withOrder(ctx, order.OrderID)
		s.orders.Finalize(ctx, order)

		if err := s.cart.Clear(ctx, sessionID); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "checkout.cart_clear_failed")
		}

		session.State = StateSucceeded
		session.Order = order
		session.ClientSecret = ""
		s.save(ctx, sessionID, session)

		if s.logg != nil {
			s.logg.Info(ctx, "checkout.succeeded")
		}
		return &Outcome{Status: OutcomeSucceeded, Order: order}, nil

	case "processing", "requires_action", "requires_confirmation":
		session.State = StateCollectingPaymentMethod
		s.save(ctx, sessionID, session)
		return &Outcome{Status: OutcomePending, Message: "payment is still processing"}, nil

	default:
		// The intent stays open; the customer may retry with another method.
		session.State = StateCollectingPaymentMethod
		session.FailureMessage = "payment was not completed (" + status.Status + ")"
		s.save(ctx, sessionID, session)

		if s.logg != nil {
			s.logg.Warn(ctx, "checkout.payment_not_completed")
		}
		return &Outcome{Status: OutcomeFailed, Message: session.FailureMessage}, nil
	}
}

func (s *service) load(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := s.store.Get(ctx, pkgredis.CheckoutKey(sessionID))
	if err != nil {
		if pkgredis.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return &session, nil
}

// save persists the session best-effort. A failed write loses resumability
// but never a valid in-flight response, so the error is returned only for
// the caller to decide on.
func (s *service) save(ctx context.Context, sessionID string, session *Session) error {
	session.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode checkout session")
	}
	if err := s.store.Set(ctx, pkgredis.CheckoutKey(sessionID), raw, s.cfg.SessionTTL); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "checkout.session_persist_failed")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}
	return nil
}

func (s *service) withSession(ctx context.Context, sessionID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithSessionID(ctx, sessionID)
}

func (s *service) withOrder(ctx context.Context, orderID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderID(ctx, orderID)
}
