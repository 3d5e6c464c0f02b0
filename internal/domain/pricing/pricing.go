// Package pricing turns cart lines into money amounts. It does no I/O.
//
// Every amount is rounded to a whole currency unit with decimal.Round(0),
// which rounds half away from zero (200.5 -> 201, 200.4 -> 200).
package pricing

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Policy holds the shipping and tax rates applied to a cart.
type Policy struct {
	// per unit of quantity, in currency units
	ShippingPerUnit decimal.Decimal
	// fraction of the taxable amount, 0.1 for 10%
	TaxRate decimal.Decimal
	// when set, shipping is part of the taxable amount
	TaxShipping bool
}

// Breakdown is the priced view of a cart.
type Breakdown struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// DefaultPolicy charges 3 per unit shipped and 10% tax on subtotal plus shipping.
func DefaultPolicy() Policy {
	return NewPolicy(decimal.NewFromInt(3), decimal.NewFromInt(10), true)
}

func NewPolicy(shippingPerUnit decimal.Decimal, taxRatePercent decimal.Decimal, taxShipping bool) Policy {
	return Policy{
		ShippingPerUnit: shippingPerUnit,
		TaxRate:         taxRatePercent.Div(hundred),
		TaxShipping:     taxShipping,
	}
}

// Subtotal is the sum of unitPrice*amount over the lines.
func (p Policy) Subtotal(lines []model.CartLine) int64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Amount)))
	}
	return round(sum)
}

// Shipping charges the flat rate for every unit in the cart.
func (p Policy) Shipping(lines []model.CartLine) int64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromInt(l.Amount).Mul(p.ShippingPerUnit))
	}
	return round(sum)
}

// Tax is round(taxable * TaxRate).
func (p Policy) Tax(taxable int64) int64 {
	return round(decimal.NewFromInt(taxable).Mul(p.TaxRate))
}

// Quote prices a cart. Total is always Subtotal+Shipping+Tax.
func (p Policy) Quote(lines []model.CartLine) Breakdown {
	subtotal := p.Subtotal(lines)
	shipping := p.Shipping(lines)
	taxable := subtotal
	if p.TaxShipping {
		taxable += shipping
	}
	tax := p.Tax(taxable)
	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}

// ApplyDiscount removes percentage% of total. percentage is 0..100.
func ApplyDiscount(total int64, percentage decimal.Decimal) int64 {
	off := round(decimal.NewFromInt(total).Mul(percentage).Div(hundred))
	return total - off
}

// ToMinorUnits converts an amount due into the processor's minor unit:
// amount * conversion factor * 100.
func ToMinorUnits(amount int64, conversionFactor decimal.Decimal) int64 {
	return round(decimal.NewFromInt(amount).Mul(conversionFactor).Mul(hundred))
}

func round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
