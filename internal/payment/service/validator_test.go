package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/splitpay/internal/fee"
	"github.com/smallbiznis/splitpay/internal/payment/domain"
	"github.com/stretchr/testify/assert"
)

func newTestValidator() *requestValidator {
	return newRequestValidator(fee.ProvideCatalog(), "BRL")
}

func TestValidate(t *testing.T) {
	validator := newTestValidator()

	oneSplit := []domain.Split{{RecipientID: "acc_1", Role: "producer", Percent: 100}}

	tests := []struct {
		name string
		req  domain.CaptureRequest
		want error
	}{
		{
			name: "valid pix",
			req:  captureReq("10.00", "pix", 1, oneSplit...),
			want: nil,
		},
		{
			name: "valid card with installments",
			req:  captureReq("10.00", "card", 12, oneSplit...),
			want: nil,
		},
		{
			name: "unsupported currency",
			req: domain.CaptureRequest{
				Amount:        decimal.RequireFromString("10.00"),
				Currency:      "USD",
				PaymentMethod: "pix",
				Installments:  1,
				Splits:        oneSplit,
			},
			want: domain.ErrUnsupportedCurrency,
		},
		{
			name: "method required",
			req:  captureReq("10.00", "", 1, oneSplit...),
			want: domain.ErrMethodRequired,
		},
		{
			name: "unsupported method",
			req:  captureReq("10.00", "boleto", 1, oneSplit...),
			want: fee.ErrUnsupportedMethod,
		},
		{
			name: "pix rejects installments",
			req:  captureReq("10.00", "pix", 2, oneSplit...),
			want: domain.ErrIncompatibleInstallments,
		},
		{
			name: "card installments above range",
			req:  captureReq("10.00", "card", 13, oneSplit...),
			want: domain.ErrInstallmentsOutOfRange,
		},
		{
			name: "card installments below range",
			req:  captureReq("10.00", "card", 0, oneSplit...),
			want: domain.ErrInstallmentsOutOfRange,
		},
		{
			name: "no splits",
			req:  captureReq("10.00", "pix", 1),
			want: domain.ErrSplitCountOutOfRange,
		},
		{
			name: "too many splits",
			req: captureReq("10.00", "pix", 1,
				domain.Split{RecipientID: "a", Percent: 20},
				domain.Split{RecipientID: "b", Percent: 20},
				domain.Split{RecipientID: "c", Percent: 20},
				domain.Split{RecipientID: "d", Percent: 20},
				domain.Split{RecipientID: "e", Percent: 10},
				domain.Split{RecipientID: "f", Percent: 10},
			),
			want: domain.ErrSplitCountOutOfRange,
		},
		{
			name: "percents must sum to 100",
			req: captureReq("10.00", "pix", 1,
				domain.Split{RecipientID: "a", Percent: 60},
				domain.Split{RecipientID: "b", Percent: 30},
			),
			want: domain.ErrSplitPercentMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// Earlier checks short-circuit later ones, so a multi-violation request
// surfaces the first failing check.
func TestValidate_CheckOrder(t *testing.T) {
	validator := newTestValidator()

	req := domain.CaptureRequest{
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      "USD",
		PaymentMethod: "boleto",
		Installments:  99,
	}
	assert.ErrorIs(t, validator.Validate(req), domain.ErrUnsupportedCurrency)

	req.Currency = "BRL"
	assert.ErrorIs(t, validator.Validate(req), fee.ErrUnsupportedMethod)

	req.PaymentMethod = "card"
	assert.ErrorIs(t, validator.Validate(req), domain.ErrInstallmentsOutOfRange)

	req.Installments = 3
	assert.ErrorIs(t, validator.Validate(req), domain.ErrSplitCountOutOfRange)
}
