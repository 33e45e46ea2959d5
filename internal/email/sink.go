// Package email dispatches order notifications through a transactional
// template API (EmailJS-style: the provider owns the template, the sink only
// supplies the parameter bag).
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskerway/dawat-storefront/internal/orders"
	"github.com/taskerway/dawat-storefront/pkg/config"
	"github.com/taskerway/dawat-storefront/pkg/logger"
)

// sendRequest is the dispatch API envelope.
type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Sink sends customer confirmations and owner alerts.
type Sink struct {
	cfg    config.EmailConfig
	client *http.Client
	logg   *logger.Logger
}

// NewSink builds the email sink. Returns nil with no error when the dispatch
// credentials are not configured, which disables the sink.
func NewSink(cfg config.EmailConfig, logg *logger.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.ServiceID) == "" ||
		strings.TrimSpace(cfg.TemplateID) == "" ||
		strings.TrimSpace(cfg.PublicKey) == "" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("email base url required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Sink{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logg:   logg,
	}, nil
}

// SendConfirmation emails the order summary to the customer.
func (s *Sink) SendConfirmation(ctx context.Context, order *orders.Order) error {
	params := s.templateParams(order)
	params["to_name"] = order.CustomerName
	params["to_email"] = order.Email
	return s.send(ctx, order, params, "email.confirmation_sent")
}

// SendOwnerAlert emails the same order summary to the business owner so new
// orders surface without watching the spreadsheet.
func (s *Sink) SendOwnerAlert(ctx context.Context, order *orders.Order) error {
	if strings.TrimSpace(s.cfg.OwnerEmail) == "" {
		return nil
	}
	params := s.templateParams(order)
	params["to_name"] = s.cfg.OwnerName
	params["to_email"] = s.cfg.OwnerEmail
	params["reply_to"] = order.Email
	return s.send(ctx, order, params, "email.owner_alert_sent")
}

func (s *Sink) send(ctx context.Context, order *orders.Order, params map[string]string, logMsg string) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      s.cfg.ServiceID,
		TemplateID:     s.cfg.TemplateID,
		UserID:         s.cfg.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post email: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.New("email dispatch returned " + resp.Status)
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), logMsg)
	}
	return nil
}

// templateParams renders the shared parameter bag. All money is formatted
// here; templates only interpolate strings.
func (s *Sink) templateParams(order *orders.Order) map[string]string {
	instructions := order.SpecialInstructions
	if strings.TrimSpace(instructions) == "" {
		instructions = "None"
	}

	return map[string]string{
		"customer_name":        order.CustomerName,
		"customer_phone":       order.Phone,
		"order_id":             order.OrderID,
		"order_date":           order.CreatedAt.Format("02 January 2006"),
		"items_list":           itemsList(order.Items),
		"subtotal":             formatMoney(order.Subtotal),
		"delivery_fee":         formatDeliveryFee(order.DeliveryFee),
		"total":                formatMoney(order.Total),
		"delivery_address":     order.Address,
		"special_instructions": instructions,
	}
}

// itemsList renders one line per item with its line total.
func itemsList(items []orders.Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s x%d - %s", item.Name, item.Quantity, formatMoney(item.LineTotal())))
	}
	return strings.Join(lines, "\n")
}

func formatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func formatDeliveryFee(fee decimal.Decimal) string {
	if fee.IsZero() {
		return "FREE"
	}
	return formatMoney(fee)
}
