package service

import (
	"strings"

	"github.com/smallbiznis/splitpay/internal/fee"
	"github.com/smallbiznis/splitpay/internal/payment/domain"
)

// requestValidator enforces the cross-field business invariants. Checks run
// in a fixed order and short-circuit, which decides which error surfaces
// first on multi-violation input.
type requestValidator struct {
	catalog  *fee.Catalog
	currency string
}

func newRequestValidator(catalog *fee.Catalog, currency string) *requestValidator {
	return &requestValidator{catalog: catalog, currency: currency}
}

func (v *requestValidator) Validate(req domain.CaptureRequest) error {
	if req.Currency != v.currency {
		return domain.ErrUnsupportedCurrency
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return domain.ErrMethodRequired
	}
	if !v.catalog.Supports(method) {
		return fee.ErrUnsupportedMethod
	}

	switch strings.ToLower(method) {
	case "pix":
		if req.Installments > 1 {
			return domain.ErrIncompatibleInstallments
		}
	case "card":
		if req.Installments < 1 || req.Installments > 12 {
			return domain.ErrInstallmentsOutOfRange
		}
	}

	if len(req.Splits) < 1 || len(req.Splits) > 5 {
		return domain.ErrSplitCountOutOfRange
	}

	total := 0
	for _, split := range req.Splits {
		total += split.Percent
	}
	if total != 100 {
		return domain.ErrSplitPercentMismatch
	}

	return nil
}
