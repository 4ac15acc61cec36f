package bots

import "math"

// sma returns the simple moving average of the last n values, or false
// when fewer than n values exist.
func sma(history []float64, n int) (float64, bool) {
	if n <= 0 || len(history) < n {
		return 0, false
	}
	sum := 0.0
	for _, v := range history[len(history)-n:] {
		sum += v
	}
	return sum / float64(n), true
}

// zScore returns how many standard deviations the latest value sits from
// the mean of the last n values.
func zScore(history []float64, n int) (float64, bool) {
	if n <= 0 || len(history) < n {
		return 0, false
	}
	win := history[len(history)-n:]
	mu := 0.0
	for _, v := range win {
		mu += v
	}
	mu /= float64(n)
	variance := 0.0
	for _, v := range win {
		variance += (v - mu) * (v - mu)
	}
	sd := math.Sqrt(variance / float64(n))
	if sd == 0 {
		sd = 1e-8
	}
	return (win[len(win)-1] - mu) / sd, true
}
