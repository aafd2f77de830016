package domain

import "math"

// Round2 rounds to two decimal places, half away from zero, consistent with
// currency display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Totals derives subtotal, tax and total for the cart at the given tax rate.
// Tax and total are computed from the raw sum over effective prices; every
// reported figure is rounded to two decimals.
func (c Cart) Totals(taxRate float64) CartTotals {
	var subtotal float64
	for _, line := range c.Lines {
		subtotal += line.Product.EffectivePrice() * float64(line.Quantity)
	}
	tax := Round2(subtotal * taxRate)
	return CartTotals{
		Subtotal: Round2(subtotal),
		Tax:      tax,
		Total:    Round2(subtotal + tax),
	}
}
