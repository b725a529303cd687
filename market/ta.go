package market

// RSI computes the relative strength index of a series of prices using
// Wilder's smoothing over the given length, multiplied by scalar.
// The result has the same length as prices, with zeros before index length.
// If there are not more prices than length, the result is nil.
func RSI(prices []float64, length int, scalar float64) []float64 {
	if length <= 0 || len(prices) <= length {
		return nil
	}
	r := make([]float64, len(prices))
	var gain, loss float64
	for i := 1; i <= length; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	n := float64(length)
	gain /= n
	loss /= n
	r[length] = rsi(gain, loss, scalar)
	for i := length + 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		var g, l float64
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		gain = (gain*(n-1) + g) / n
		loss = (loss*(n-1) + l) / n
		r[i] = rsi(gain, loss, scalar)
	}
	return r
}

func rsi(gain, loss, scalar float64) float64 {
	if loss == 0 {
		if gain == 0 {
			return scalar / 2
		}
		return scalar
	}
	return scalar - scalar/(1+gain/loss)
}
