package weights

import "gonum.org/v1/gonum/floats"

// Average accumulates weight vectors (one per epoch) and yields their mean
type Average struct {
	sum []float64
	n   int
}

// Add accumulates v
func (a *Average) Add(v Vector) {
	var size = len(a.sum)
	for f := range v {
		if int(f) >= size {
			size = int(f) + 1
		}
	}
	if size > len(a.sum) {
		a.sum = append(a.sum, make([]float64, size-len(a.sum))...)
	}
	floats.Add(a.sum, v.Dense(len(a.sum)))
	a.n++
}

// Len is the number of accumulated vectors
func (a *Average) Len() int {
	return a.n
}

// Vector returns the mean of the accumulated vectors
func (a *Average) Vector() Vector {
	if a.n == 0 {
		return New()
	}
	var mean = make([]float64, len(a.sum))
	copy(mean, a.sum)
	floats.Scale(1/float64(a.n), mean)
	return FromDense(mean)
}
