// Package decoder defines how the trainer talks to a translation decoder and
// ships a small monotone lexicon decoder implementing it.
package decoder

import "github.com/neurlang/dtrain/kbest"

// Decoder produces k-best lists. The trainer pushes a dense copy of its
// weights with SetWeights immediately before every Decode, ids index the
// shared feature dictionary.
type Decoder interface {
	// SetWeights replaces the decoder's weights
	SetWeights(dense []float64)

	// Decode returns up to k distinct candidates ranked by model score.
	// Gold scores are left zero.
	Decode(source string, k int) (kbest.List, error)
}
