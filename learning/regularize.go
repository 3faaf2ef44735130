package learning

import "math"

import "github.com/neurlang/dtrain/weights"

// decayFloor bounds the naive decay factor away from zero
const decayFloor = 1e-7

// Clip moves x towards zero by r, never past it
func Clip(x, r float64) float64 {
	switch {
	case x > 0:
		return math.Max(0, x-r)
	case x < 0:
		return math.Min(0, x+r)
	}
	return 0
}

// Cumulative applies the cumulative l1 penalty to x. u is the total penalty
// every weight could have received so far, q the penalty x already received.
// It returns the new value and the new q. The trainer derives u from a
// sentence index that keeps counting across epochs, as in Tsuruoka et al.
// (2009), so the budget is not restarted at the beginning of each epoch.
func Cumulative(x, u, q float64) (float64, float64) {
	var z = x
	switch {
	case x > 0:
		x = math.Max(0, x-math.Max(0, u+q))
	case x < 0:
		x = math.Min(0, x+math.Max(0, u-q))
	}
	return x, q + (x - z)
}

func (e *Engine) regularize(w weights.Vector, touched []uint32, sentence int) {
	var r = e.L1Strength
	switch e.L1 {
	case L1Naive:
		for _, f := range touched {
			w[f] *= math.Max(decayFloor, e.Eta/(e.Eta+e.decay[f]))
			e.decay[f]++
			switch {
			case w[f] > 0:
				w[f] -= r
			case w[f] < 0:
				w[f] += r
			}
		}
	case L1Clip:
		for _, f := range touched {
			w[f] = Clip(w[f], r)
		}
	case L1Cumulative:
		var u = float64(sentence+1) * r
		for _, f := range touched {
			w[f], e.penalties[f] = Cumulative(w[f], u, e.penalties[f])
		}
	}
}
