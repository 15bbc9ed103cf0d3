// Package lineitem holds the product rows embedded in leads, proforma
// invoices and purchase orders, and the arithmetic shared by the API and
// its clients.
package lineitem

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is a single product row. It has no identity outside its parent record.
type Item struct {
	Product    string  `json:"product"`
	PartNumber *string `json:"part_number,omitempty"`
	Category   string  `json:"category"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Amount     float64 `json:"amount"`
}

var (
	ErrNoValidProduct = errors.New("invalid_products")
	ErrLastRow        = errors.New("last_row")
	ErrRowOutOfRange  = errors.New("row_out_of_range")
)

// Amount returns quantity × price rounded to two places.
func Amount(quantity, price float64) float64 {
	return Round2(decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)))
}

// Round2 converts d to a float rounded half away from zero to two places.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Sub returns a − b rounded to two places.
func Sub(a, b float64) float64 {
	return Round2(decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)))
}

// Sum returns the rounded sum of values.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return Round2(total)
}

// Total sums the stored amounts of items.
func Total(items []Item) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Amount))
	}
	return Round2(total)
}

// Recompute returns a copy of items with every amount derived from its
// quantity and price, and the resulting total.
func Recompute(items []Item) ([]Item, float64) {
	out := make([]Item, len(items))
	total := decimal.Zero
	for i, item := range items {
		item.Product = strings.TrimSpace(item.Product)
		item.Category = strings.TrimSpace(item.Category)
		if item.PartNumber != nil {
			pn := strings.TrimSpace(*item.PartNumber)
			if pn == "" {
				item.PartNumber = nil
			} else {
				item.PartNumber = &pn
			}
		}
		raw := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.Price))
		item.Amount = Round2(raw)
		total = total.Add(raw)
		out[i] = item
	}
	return out, Round2(total)
}

// Validate requires at least one row with a product name and a positive quantity.
func Validate(items []Item) error {
	for _, item := range items {
		if strings.TrimSpace(item.Product) != "" && item.Quantity > 0 {
			return nil
		}
	}
	return ErrNoValidProduct
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Parse coerces form input to a number using its leading numeric part, so
// "12abc" is 12. Input with no leading number is 0.
func Parse(text string) float64 {
	m := numericPrefix.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// HasCategory reports whether any row's category contains query, ignoring case.
// An empty query matches everything.
func HasCategory(items []Item, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Category), query) {
			return true
		}
	}
	return false
}
