package service

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/splitpay/internal/fee"
	"github.com/smallbiznis/splitpay/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() *splitCalculator {
	return newSplitCalculator(fee.ProvideCatalog())
}

func captureReq(amount, method string, installments int, splits ...domain.Split) domain.CaptureRequest {
	return domain.CaptureRequest{
		Amount:        decimal.RequireFromString(amount),
		Currency:      "BRL",
		PaymentMethod: method,
		Installments:  installments,
		Splits:        splits,
	}
}

func TestCalculate_CardFeeFormula(t *testing.T) {
	calc := newTestCalculator()

	result, err := calc.Calculate(captureReq("297.00", "card", 3,
		domain.Split{RecipientID: "acc_1", Role: "producer", Percent: 70},
		domain.Split{RecipientID: "acc_2", Role: "affiliate", Percent: 30},
	))
	require.NoError(t, err)

	assert.Equal(t, "297.00", result.GrossAmount)
	assert.Equal(t, "26.70", result.PlatformFeeAmount)
	assert.Equal(t, "270.30", result.NetAmount)
	require.Len(t, result.Receivables, 2)
	assert.Equal(t, "189.21", result.Receivables[0].Amount)
	assert.Equal(t, "81.09", result.Receivables[1].Amount)
}

func TestCalculate_PixIsFree(t *testing.T) {
	calc := newTestCalculator()

	result, err := calc.Calculate(captureReq("150.55", "pix", 1,
		domain.Split{RecipientID: "acc_1", Role: "producer", Percent: 100},
	))
	require.NoError(t, err)

	assert.Equal(t, "0.00", result.PlatformFeeAmount)
	assert.Equal(t, "150.55", result.NetAmount)
	assert.Equal(t, "150.55", result.Receivables[0].Amount)
}

func TestCalculate_RemainderGoesToProducer(t *testing.T) {
	calc := newTestCalculator()

	result, err := calc.Calculate(captureReq("100.01", "pix", 1,
		domain.Split{RecipientID: "acc_1", Role: "producer", Percent: 50},
		domain.Split{RecipientID: "acc_2", Role: "affiliate", Percent: 50},
	))
	require.NoError(t, err)

	// The leftover cent lands entirely on the producer line, in input order.
	assert.Equal(t, "50.01", result.Receivables[0].Amount)
	assert.Equal(t, "50.00", result.Receivables[1].Amount)
}

func TestCalculate_RemainderGoesToLargestPercentWithoutProducer(t *testing.T) {
	calc := newTestCalculator()

	result, err := calc.Calculate(captureReq("100.01", "pix", 1,
		domain.Split{RecipientID: "acc_1", Role: "affiliate", Percent: 30},
		domain.Split{RecipientID: "acc_2", Role: "platform", Percent: 70},
	))
	require.NoError(t, err)

	assert.Equal(t, "30.00", result.Receivables[0].Amount)
	assert.Equal(t, "70.01", result.Receivables[1].Amount)
}

func TestCalculate_RemainderTieKeepsFirstIndex(t *testing.T) {
	calc := newTestCalculator()

	result, err := calc.Calculate(captureReq("100.01", "pix", 1,
		domain.Split{RecipientID: "acc_1", Role: "a", Percent: 50},
		domain.Split{RecipientID: "acc_2", Role: "b", Percent: 50},
	))
	require.NoError(t, err)

	assert.Equal(t, "50.01", result.Receivables[0].Amount)
	assert.Equal(t, "50.00", result.Receivables[1].Amount)
}

func TestCalculate_InvalidAmount(t *testing.T) {
	calc := newTestCalculator()

	for _, amount := range []string{"0.00", "-10.00"} {
		_, err := calc.Calculate(captureReq(amount, "pix", 1,
			domain.Split{RecipientID: "acc_1", Percent: 100},
		))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestCalculate_UnsupportedMethod(t *testing.T) {
	calc := newTestCalculator()

	_, err := calc.Calculate(captureReq("10.00", "boleto", 1,
		domain.Split{RecipientID: "acc_1", Percent: 100},
	))
	assert.ErrorIs(t, err, fee.ErrUnsupportedMethod)
}

// TestCalculate_SumInvariants drives random valid inputs through the
// calculator and checks the two exact-sum postconditions:
// fee + net == gross and the receivables add up to net.
func TestCalculate_SumInvariants(t *testing.T) {
	calc := newTestCalculator()
	rng := rand.New(rand.NewSource(42))

	methods := []struct {
		method       string
		installments int
	}{
		{"pix", 1},
		{"card", 1},
		{"card", 2},
		{"card", 6},
		{"card", 12},
	}

	for i := 0; i < 500; i++ {
		gross := decimal.New(rng.Int63n(10_000_000)+1, -2)
		splits := randomSplits(rng)
		pick := methods[rng.Intn(len(methods))]

		result, err := calc.Calculate(domain.CaptureRequest{
			Amount:        gross,
			Currency:      "BRL",
			PaymentMethod: pick.method,
			Installments:  pick.installments,
			Splits:        splits,
		})
		require.NoError(t, err)

		feeAmt := decimal.RequireFromString(result.PlatformFeeAmount)
		net := decimal.RequireFromString(result.NetAmount)
		assert.True(t, feeAmt.Add(net).Equal(gross),
			"fee %s + net %s != gross %s", result.PlatformFeeAmount, result.NetAmount, gross)

		sum := decimal.Zero
		for _, receivable := range result.Receivables {
			sum = sum.Add(decimal.RequireFromString(receivable.Amount))
		}
		assert.True(t, sum.Equal(net),
			"receivables %s != net %s (gross %s, %s/%d, %d splits)",
			sum, net, gross, pick.method, pick.installments, len(splits))
	}
}

func randomSplits(rng *rand.Rand) []domain.Split {
	count := rng.Intn(5) + 1
	splits := make([]domain.Split, count)
	remaining := 100
	for i := range splits {
		percent := remaining
		if i < count-1 {
			percent = rng.Intn(remaining-(count-1-i)) + 1
		}
		role := "affiliate"
		if rng.Intn(3) == 0 {
			role = domain.RoleProducer
		}
		splits[i] = domain.Split{
			RecipientID: "acc_" + string(rune('a'+i)),
			Role:        role,
			Percent:     percent,
		}
		remaining -= percent
	}
	return splits
}
