package service

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/splitpay/internal/fee"
	"github.com/smallbiznis/splitpay/internal/payment/domain"
)

// splitCalculator owns every piece of fixed-point arithmetic and string
// rendering. Amounts leave it as exact 2-decimal strings and are passed
// through untouched by the layers above.
type splitCalculator struct {
	catalog *fee.Catalog
}

func newSplitCalculator(catalog *fee.Catalog) *splitCalculator {
	return &splitCalculator{catalog: catalog}
}

// Calculate prices a request. Rounding order matters:
// fee is half-up, per-split shares truncate, and the leftover cents land on
// a single receivable so nothing is ever lost or double-counted.
func (c *splitCalculator) Calculate(req domain.CaptureRequest) (domain.CalculationResult, error) {
	if !req.Amount.IsPositive() {
		return domain.CalculationResult{}, domain.ErrInvalidAmount
	}

	pct, err := c.catalog.PercentageFor(req.PaymentMethod, req.Installments)
	if err != nil {
		return domain.CalculationResult{}, err
	}

	gross := req.Amount.Round(2)
	platformFee := gross.Mul(pct).Shift(-2).Round(2)
	net := gross.Sub(platformFee).Round(2)

	shares := make([]decimal.Decimal, len(req.Splits))
	allocated := decimal.Zero
	for i, split := range req.Splits {
		share := net.Mul(decimal.NewFromInt(int64(split.Percent))).Shift(-2).Truncate(2)
		shares[i] = share
		allocated = allocated.Add(share)
	}

	// Truncation guarantees allocated <= net; whatever is left goes to one
	// auditable line, never spread across recipients.
	if remainder := net.Sub(allocated); !remainder.IsZero() {
		target := remainderTarget(req.Splits)
		shares[target] = shares[target].Add(remainder)
	}

	receivables := make([]domain.Receivable, len(req.Splits))
	for i, split := range req.Splits {
		receivables[i] = domain.Receivable{
			RecipientID: split.RecipientID,
			Role:        split.Role,
			Amount:      shares[i].StringFixed(2),
		}
	}

	return domain.CalculationResult{
		GrossAmount:       gross.StringFixed(2),
		PlatformFeeAmount: platformFee.StringFixed(2),
		NetAmount:         net.StringFixed(2),
		Receivables:       receivables,
	}, nil
}

// remainderTarget picks the first producer-role split, else the split with
// the largest percent. Ties keep the first-encountered index.
func remainderTarget(splits []domain.Split) int {
	largest := 0
	for i, split := range splits {
		if split.Role == domain.RoleProducer {
			return i
		}
		if split.Percent > splits[largest].Percent {
			largest = i
		}
	}
	return largest
}
