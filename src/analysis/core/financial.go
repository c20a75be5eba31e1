package core

// -----------------------------------------------------------------------------

// PriceChange returns the absolute and percent change from prev to price.
// The percentage is 0 when prev is not positive.
func PriceChange(price, prev float64) (float64, float64) {
	change := price - prev
	if prev <= 0 {
		return change, 0
	}
	return change, change / prev * 100
}

// -----------------------------------------------------------------------------

// ValueAt returns the value of series[i] or 0 past its end.
func ValueAt[P ~[2]float64](series []P, i int) float64 {
	if i < 0 || i >= len(series) {
		return 0
	}
	return series[i][1]
}

// -----------------------------------------------------------------------------

// OrZero dereferences a nullable figure.
func OrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
