// Package sheets posts finalized orders to a spreadsheet web-app webhook.
// The webhook is a best-effort record keeper: the response body carries no
// information and is discarded.
package sheets

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

	"github.com/taskerway/dawat-storefront/internal/orders"
	"github.com/taskerway/dawat-storefront/pkg/config"
	"github.com/taskerway/dawat-storefront/pkg/logger"
)

// rowPayload is the flat contract the spreadsheet script expects. Monetary
// fields are fixed two-decimal strings so the sheet never sees float noise.
type rowPayload struct {
	OrderID             string `json:"orderId"`
	OrderDate           string `json:"orderDate"`
	CustomerName        string `json:"customerName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	Items               string `json:"items"`
	Subtotal            string `json:"subtotal"`
	DeliveryFee         string `json:"deliveryFee"`
	Total               string `json:"total"`
	PaymentStatus       string `json:"paymentStatus"`
	SpecialInstructions string `json:"specialInstructions"`
}

// Sink posts order rows to the configured web-app URL.
type Sink struct {
	url      string
	client   *http.Client
	location *time.Location
	logg     *logger.Logger
}

// NewSink builds the spreadsheet sink. Returns nil with no error when no URL
// is configured, which disables the sink.
func NewSink(cfg config.SheetsConfig, logg *logger.Logger) (*Sink, error) {
	url := strings.TrimSpace(cfg.WebAppURL)
	if url == "" {
		return nil, nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load sheets timezone %q: %w", cfg.Timezone, err)
	}

	return &Sink{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		location: location,
		logg:     logg,
	}, nil
}

// Record posts one order row. The status code is checked but the body is
// ignored; the caller decides whether a failure matters.
func (s *Sink) Record(ctx context.Context, order *orders.Order) error {
	body, err := json.Marshal(s.payloadFor(order))
	if err != nil {
		return fmt.Errorf("encode sheet row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sheet row: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.New("sheet webhook returned " + resp.Status)
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), "sheets.row_recorded")
	}
	return nil
}

func (s *Sink) payloadFor(order *orders.Order) rowPayload {
	status := string(order.PaymentStatus)
	if status == "" {
		status = "Pending"
	}
	instructions := strings.TrimSpace(order.SpecialInstructions)
	if instructions == "" {
		instructions = "-"
	}
	return rowPayload{
		OrderID:             order.OrderID,
		OrderDate:           order.CreatedAt.In(s.location).Format("Monday, 2 January 2006 at 3:04 pm"),
		CustomerName:        order.CustomerName,
		Email:               order.Email,
		Phone:               order.Phone,
		Address:             order.Address,
		Items:               order.ItemsSummary(),
		Subtotal:            order.Subtotal.StringFixed(2),
		DeliveryFee:         order.DeliveryFee.StringFixed(2),
		Total:               order.Total.StringFixed(2),
		PaymentStatus:       status,
		SpecialInstructions: instructions,
	}
}
