package orders

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/taskerway/dawat-storefront/internal/cart"
)

const (
	orderIDPrefix   = "DWT"
	orderIDSuffixAl = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderIDSuffixN  = 4
)

// BuildOrder drafts a Pending order from the cart snapshot and validated
// details. The cart is copied by value and never mutated; drafting twice
// yields distinct order ids over identical items and totals.
func BuildOrder(view cart.View, details CustomerDetails) *Order {
	items := make([]Item, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			ImageRef:  line.ImageRef,
		})
	}

	return &Order{
		OrderID:             NewOrderID(),
		CustomerName:        strings.TrimSpace(details.FullName),
		Email:               strings.TrimSpace(details.Email),
		Phone:               strings.TrimSpace(details.Phone),
		Address:             composeAddress(details),
		Items:               items,
		Subtotal:            view.Totals.Subtotal,
		DeliveryFee:         view.Totals.DeliveryFee,
		Total:               view.Totals.Total,
		SpecialInstructions: strings.TrimSpace(details.SpecialInstructions),
		PaymentStatus:       StatusPending,
		CreatedAt:           time.Now().UTC(),
	}
}

// NewOrderID returns "DWT-<millis base36>-<4 random base36>". Sortable by
// creation time, random enough for the expected order volume; not a security
// token.
func NewOrderID() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	suffix := make([]byte, orderIDSuffixN)
	for i := range suffix {
		suffix[i] = orderIDSuffixAl[rand.Intn(len(orderIDSuffixAl))]
	}

	return fmt.Sprintf("%s-%s-%s", orderIDPrefix, ts, suffix)
}

func composeAddress(details CustomerDetails) string {
	return fmt.Sprintf("%s, %s VIC %s",
		strings.TrimSpace(details.StreetAddress),
		strings.TrimSpace(details.Suburb),
		strings.TrimSpace(details.Postcode),
	)
}
