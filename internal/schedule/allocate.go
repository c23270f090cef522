package schedule

import "github.com/shopspring/decimal"

// Allocate divides a total amount across n installments. Every installment is
// total/n rounded to 2 decimal places except the last, which absorbs the
// rounding remainder so the outputs sum to the total exactly. Returns nil for
// n <= 0; the caller treats an empty schedule as a validation failure.
func Allocate(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	per := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	amounts := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		amounts[i] = per
	}
	amounts[n-1] = total.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))
	return amounts
}
