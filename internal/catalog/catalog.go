package catalog

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
)

// Product is a menu entry. Prices are AUD and live server-side so carts can
// never carry client-supplied amounts.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageRef    string          `json:"image_ref"`
}

var menu = []Product{
	{
		ID:          1,
		Name:        "Saffron Biryani",
		Description: "Aromatic, premium spices, authentic Hyderabadi flavor",
		UnitPrice:   decimal.NewFromInt(45),
		ImageRef:    "https://images.unsplash.com/photo-1563379091339-03b21ab4a4f8?w=400&h=300&fit=crop",
	},
	{
		ID:          2,
		Name:        "Chicken Curry",
		Description: "Juicy, perfectly spiced, slow-cooked with care",
		UnitPrice:   decimal.NewFromInt(35),
		ImageRef:    "https://images.unsplash.com/photo-1603894584373-5ac82b2ae398?w=400&h=300&fit=crop",
	},
	{
		ID:          3,
		Name:        "Raita & Salad",
		Description: "Fresh, crisp, and flavorful accompaniment",
		UnitPrice:   decimal.NewFromInt(15),
		ImageRef:    "https://images.unsplash.com/photo-1546793665-c74683f339c1?w=400&h=300&fit=crop",
	},
	{
		ID:          4,
		Name:        "Celebration Cake",
		Description: "Sweet, festive, premium dessert for New Year",
		UnitPrice:   decimal.NewFromInt(55),
		ImageRef:    "https://images.unsplash.com/photo-1578985545062-69928b1d9587?w=400&h=300&fit=crop",
	},
	{
		ID:          5,
		Name:        "Family Pack (Serves 4)",
		Description: "Complete feast with Biryani, Curry, Sides & Cake",
		UnitPrice:   decimal.NewFromInt(169),
		ImageRef:    "https://images.unsplash.com/photo-1567188040759-fb8a883dc6d8?w=400&h=300&fit=crop",
	},
	{
		ID:          6,
		Name:        "Mutton Biryani",
		Description: "Tender mutton, aromatic rice, traditional spices",
		UnitPrice:   decimal.NewFromInt(55),
		ImageRef:    "https://images.unsplash.com/photo-1642821373181-696a54913e93?w=400&h=300&fit=crop",
	},
}

// List returns the menu in display order.
func List() []Product {
	out := make([]Product, len(menu))
	copy(out, menu)
	return out
}

// Find returns the product with the given id.
func Find(id int) (Product, error) {
	for _, p := range menu {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
