package money_test

import (
	"testing"

	"github.com/flightworks/aeroops-api/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeLine(t *testing.T) {
	t.Run("rounds each step independently", func(t *testing.T) {
		// 1.3h at $167.35 with 15% tax:
		// amount    = round2(1.3 * 167.35)  = 217.56  (raw 217.555)
		// tax       = round2(217.56 * 0.15) = 32.63   (raw 32.634)
		// inclusive = round2(167.35 * 1.15) = 192.45  (raw 192.4525)
		line := money.ComputeLine(decimal.NewFromFloat(1.3), 16735, decimal.NewFromFloat(0.15))

		assert.Equal(t, int64(21756), line.Amount)
		assert.Equal(t, int64(3263), line.TaxAmount)
		assert.Equal(t, int64(19245), line.RateInclusive)
		assert.Equal(t, int64(25019), line.LineTotal)
	})

	t.Run("zero tax rate", func(t *testing.T) {
		line := money.ComputeLine(decimal.NewFromInt(2), 5000, decimal.Zero)

		assert.Equal(t, int64(10000), line.Amount)
		assert.Equal(t, int64(0), line.TaxAmount)
		assert.Equal(t, int64(5000), line.RateInclusive)
		assert.Equal(t, int64(10000), line.LineTotal)
	})

	t.Run("half rounds away from zero", func(t *testing.T) {
		// 0.5 * 1.01 = 0.505 -> 0.51
		line := money.ComputeLine(decimal.NewFromFloat(0.5), 101, decimal.Zero)
		assert.Equal(t, int64(51), line.Amount)
	})
}

func TestSumLines(t *testing.T) {
	t.Run("sums stored line values", func(t *testing.T) {
		totals := money.SumLines([]money.LineAmounts{
			{Amount: 21756, TaxAmount: 3263},
			{Amount: 9000, TaxAmount: 1350},
		})

		assert.Equal(t, int64(30756), totals.SubTotal)
		assert.Equal(t, int64(4613), totals.TaxTotal)
		assert.Equal(t, int64(35369), totals.Total)
	})

	t.Run("empty set yields zeros", func(t *testing.T) {
		totals := money.SumLines(nil)

		assert.Equal(t, int64(0), totals.SubTotal)
		assert.Equal(t, int64(0), totals.TaxTotal)
		assert.Equal(t, int64(0), totals.Total)
	})
}

func TestBalanceDue(t *testing.T) {
	assert.Equal(t, int64(2500), money.BalanceDue(10000, 7500))
	assert.Equal(t, int64(0), money.BalanceDue(10000, 10000))
	assert.Equal(t, int64(0), money.BalanceDue(10000, 12000), "clamped at zero")
}

func TestResolveTaxRate(t *testing.T) {
	itemRate := decimal.NewFromFloat(0.10)
	invoiceRate := decimal.NewFromFloat(0.05)

	assert.True(t, money.ResolveTaxRate(&itemRate, &invoiceRate).Equal(itemRate), "item rate wins")
	assert.True(t, money.ResolveTaxRate(nil, &invoiceRate).Equal(invoiceRate), "invoice rate next")
	assert.True(t, money.ResolveTaxRate(nil, nil).Equal(money.DefaultTaxRate), "default last")
}

func TestCentsConversion(t *testing.T) {
	assert.Equal(t, int64(16735), money.ToCents(decimal.NewFromFloat(167.35)))
	assert.True(t, money.FromCents(16735).Equal(decimal.NewFromFloat(167.35)))
	assert.Equal(t, int64(100), money.ToCents(decimal.NewFromFloat(0.999)), "rounds before shifting")
}
