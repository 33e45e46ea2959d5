package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the order through the payment lifecycle.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "Pending"
	StatusPaid    PaymentStatus = "Paid"
	StatusFailed  PaymentStatus = "Failed"
)

// CustomerDetails is the delivery form input, validated before drafting.
type CustomerDetails struct {
	FullName            string `json:"fullName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	StreetAddress       string `json:"address"`
	Suburb              string `json:"suburb"`
	Postcode            string `json:"postcode"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Item is a value snapshot of a cart line. The snapshot is taken at draft
// time so clearing the cart cannot alter a finalized order.
type Item struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image_ref,omitempty"`
}

// LineTotal returns unit price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the unit of record handed through the checkout pipeline. Items and
// totals are immutable once drafted; any change requires a new draft.
type Order struct {
	OrderID             string          `json:"orderId"`
	CustomerName        string          `json:"customerName"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Address             string          `json:"address"`
	Items               []Item          `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DeliveryFee         decimal.Decimal `json:"deliveryFee"`
	Total               decimal.Decimal `json:"total"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	PaymentIntentID     string          `json:"paymentIntentId,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// ItemsSummary renders the human-readable line listing used by the
// record-keeping sink ("Saffron Biryani x2, Raita & Salad x1").
func (o *Order) ItemsSummary() string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}
