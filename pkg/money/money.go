package money

import "github.com/shopspring/decimal"

// All monetary values are persisted as int64 cents. Computation happens on
// decimals and is rounded to 2 places at every step (half away from zero) so
// that each persisted line value is independently auditable and re-summable.

// DefaultTaxRate applies when neither the item nor the invoice carries a rate.
var DefaultTaxRate = decimal.NewFromFloat(0.15)

// LineAmounts holds the derived monetary fields of a single invoice line.
type LineAmounts struct {
	Amount        int64 // round2(quantity * unit_price), in cents
	TaxAmount     int64 // round2(amount * tax_rate), in cents
	RateInclusive int64 // round2(unit_price * (1 + tax_rate)), in cents
	LineTotal     int64 // round2(amount + tax_amount), in cents
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromCents converts cents to a 2dp decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a decimal amount to cents, rounding to 2dp first.
func ToCents(d decimal.Decimal) int64 {
	return Round2(d).Shift(2).IntPart()
}

// ComputeLine derives the monetary fields of a line from its quantity, unit
// price and tax rate. Each step is rounded independently.
func ComputeLine(quantity decimal.Decimal, unitPriceCents int64, taxRate decimal.Decimal) LineAmounts {
	unitPrice := FromCents(unitPriceCents)
	amount := Round2(quantity.Mul(unitPrice))
	tax := Round2(amount.Mul(taxRate))
	inclusive := Round2(unitPrice.Mul(decimal.NewFromInt(1).Add(taxRate)))
	lineTotal := Round2(amount.Add(tax))

	return LineAmounts{
		Amount:        ToCents(amount),
		TaxAmount:     ToCents(tax),
		RateInclusive: ToCents(inclusive),
		LineTotal:     ToCents(lineTotal),
	}
}

// InvoiceTotals aggregates line amounts into invoice-level totals. An empty
// item set yields all zeros.
type InvoiceTotals struct {
	SubTotal int64
	TaxTotal int64
	Total    int64
}

// SumLines sums amount and tax_amount across lines. Callers pass only
// non-deleted lines.
func SumLines(lines []LineAmounts) InvoiceTotals {
	var t InvoiceTotals
	for _, l := range lines {
		t.SubTotal += l.Amount
		t.TaxTotal += l.TaxAmount
	}
	t.Total = t.SubTotal + t.TaxTotal
	return t
}

// BalanceDue computes max(0, total - paid).
func BalanceDue(totalCents, paidCents int64) int64 {
	due := totalCents - paidCents
	if due < 0 {
		return 0
	}
	return due
}

// ResolveTaxRate picks the effective rate for a line: the item's own rate if
// set, otherwise the invoice's, otherwise the default.
func ResolveTaxRate(itemRate, invoiceRate *decimal.Decimal) decimal.Decimal {
	if itemRate != nil {
		return *itemRate
	}
	if invoiceRate != nil {
		return *invoiceRate
	}
	return DefaultTaxRate
}
