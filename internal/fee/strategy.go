package fee

import "github.com/shopspring/decimal"

// Strategy computes the platform fee percentage for a payment method.
// Percentages are fixed-point with 2 fraction digits (e.g. 3.99).
type Strategy interface {
	Method() string
	Percentage(installments int) decimal.Decimal
}

// PixStrategy prices PIX captures. PIX is a single-shot instrument; the
// validator rejects installments before they ever reach pricing.
type PixStrategy struct{}

func (PixStrategy) Method() string { return "pix" }

func (PixStrategy) Percentage(int) decimal.Decimal {
	return decimal.New(0, -2)
}

// CardStrategy prices card captures: 3.99% at a single installment, then a
// step function of 4.99% + 2.00% per additional installment.
type CardStrategy struct{}

func (CardStrategy) Method() string { return "card" }

func (CardStrategy) Percentage(installments int) decimal.Decimal {
	if installments <= 1 {
		return decimal.New(399, -2)
	}
	step := decimal.New(200, -2).Mul(decimal.NewFromInt(int64(installments - 1)))
	return decimal.New(499, -2).Add(step)
}
