// Package kbest holds the scored k-best list produced for one input sentence
package kbest

import "sort"
import "strings"

import "github.com/neurlang/dtrain/parallel"
import "github.com/neurlang/dtrain/weights"

// Hypothesis is one candidate translation of a k-best list
type Hypothesis struct {
	Tokens   []string       // output words
	Features weights.Vector // feature activations
	Model    float64        // model score reported by the decoder
	Gold     float64        // approximate BLEU against the references, in [0,1]
	Rank     int            // 0-based position in the decoder's k-best list
}

// String joins the output words with single spaces
func (h Hypothesis) String() string {
	return strings.Join(h.Tokens, " ")
}

// List is a k-best list
type List []Hypothesis

// SortByGold sorts l by descending gold score, stable so equal scores keep decoder order
func (l List) SortByGold() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Gold > l[j].Gold })
}

// SortByRank restores the decoder order
func (l List) SortByRank() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Rank < l[j].Rank })
}

// FeatureCount sums the number of active features over all hypotheses
func (l List) FeatureCount() (n int) {
	for i := range l {
		n += len(l[i].Features)
	}
	return
}

// Best returns the index of the hypothesis with the highest score under w,
// the first one on ties
func (l List) Best(w weights.Vector) (best int, score float64) {
	for i := range l {
		s := w.Dot(l[i].Features)
		if i == 0 || s > score {
			best, score = i, s
		}
	}
	return
}

// Score sets the gold score of every hypothesis using gold, spreading the work
// over at most threads goroutines. gold must be safe for concurrent use.
func (l List) Score(threads int, gold func(tokens []string) float64) {
	parallel.ForEach(len(l), threads, func(i int) {
		l[i].Gold = gold(l[i].Tokens)
	})
}
