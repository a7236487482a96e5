package aggregation

import "github.com/shopspring/decimal"

// DecimalFloat converts a nullable numeric aggregate as returned by the store.
// NULL, e.g. AVG over no matching rows, is 0.
func DecimalFloat(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.InexactFloat64()
}
