// Package weights implements the sparse weight vector and the feature dictionary
package weights

import "math"
import "sort"

import "gonum.org/v1/gonum/floats"

// Vector is a sparse mapping from feature id to value
type Vector map[uint32]float64

// New creates an empty vector
func New() Vector {
	return make(Vector)
}

// Get gets the value of feature f, zero when absent
func (v Vector) Get(f uint32) float64 {
	return v[f]
}

// Set sets the value of feature f
func (v Vector) Set(f uint32, x float64) {
	v[f] = x
}

// Add adds o to v elementwise
func (v Vector) Add(o Vector) {
	for f, x := range o {
		v[f] += x
	}
}

// AddScaled adds s*o to v elementwise
func (v Vector) AddScaled(o Vector, s float64) {
	for f, x := range o {
		v[f] += x * s
	}
}

// Scale multiplies every value by s
func (v Vector) Scale(s float64) {
	for f := range v {
		v[f] *= s
	}
}

// Diff returns a - b as a new vector
func Diff(a, b Vector) Vector {
	var o = make(Vector, len(a)+len(b))
	for f, x := range a {
		o[f] = x
	}
	for f, x := range b {
		o[f] -= x
	}
	return o
}

// Dot returns the dot product of v and o
func (v Vector) Dot(o Vector) (sum float64) {
	if len(o) < len(v) {
		v, o = o, v
	}
	for f, x := range v {
		sum += x * o[f]
	}
	return
}

// L2Norm returns the euclidean length of v
func (v Vector) L2Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	var values = make([]float64, 0, len(v))
	for _, x := range v {
		values = append(values, x)
	}
	return floats.Norm(values, 2)
}

// NonZero counts the entries which are not exactly zero
func (v Vector) NonZero() (n int) {
	for _, x := range v {
		if x != 0 {
			n++
		}
	}
	return
}

// Clone returns a deep copy of v
func (v Vector) Clone() Vector {
	var o = make(Vector, len(v))
	for f, x := range v {
		o[f] = x
	}
	return o
}

// Prune removes the entries which are exactly zero
func (v Vector) Prune() {
	for f, x := range v {
		if x == 0 {
			delete(v, f)
		}
	}
}

// Equal reports whether v and o agree on every nonzero entry within epsilon
func (v Vector) Equal(o Vector, epsilon float64) bool {
	for f, x := range v {
		if math.Abs(x-o[f]) > epsilon {
			return false
		}
	}
	for f, x := range o {
		if math.Abs(x-v[f]) > epsilon {
			return false
		}
	}
	return true
}

// Keys returns the feature ids of v in ascending order
func (v Vector) Keys() []uint32 {
	var keys = make([]uint32, 0, len(v))
	for f := range v {
		keys = append(keys, f)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Dense writes v into a dense slice of length n, ids >= n are dropped
func (v Vector) Dense(n int) []float64 {
	var o = make([]float64, n)
	for f, x := range v {
		if int(f) < n {
			o[f] = x
		}
	}
	return o
}

// FromDense builds a sparse vector from the nonzero entries of a dense slice
func FromDense(d []float64) Vector {
	var o = New()
	for f, x := range d {
		if x != 0 {
			o[uint32(f)] = x
		}
	}
	return o
}
