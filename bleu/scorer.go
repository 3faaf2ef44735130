package bleu

import "math"

// Scorer computes per-sentence BLEU+1 as in "Optimizing for Sentence-Level
// BLEU+1 Yields Short Translations" (Nakov et al. 2012): higher orders are
// add-one smoothed and the reference length is increased by one for the
// brevity penalty.
type Scorer struct {
	n       int
	weights []float64
}

// NewScorer creates a scorer for n-grams up to order n (n >= 1)
func NewScorer(n int) *Scorer {
	if n < 1 {
		n = 1
	}
	var s = &Scorer{n: n, weights: make([]float64, n)}
	for i := range s.weights {
		s.weights[i] = 1 / float64(n)
	}
	return s
}

// N is the maximum n-gram order
func (s *Scorer) N() int {
	return s.n
}

// BrevityPenalty is 1 for hypotheses longer than the reference, exp(1-rl/hl) otherwise
func BrevityPenalty(hl, rl int) float64 {
	if hl > rl {
		return 1
	}
	return math.Exp(1 - float64(rl)/float64(hl))
}

// BestMatchLength picks the reference length closest to hl, the first on ties
func BestMatchLength(hl int, lengths []int) int {
	if len(lengths) == 0 {
		return 0
	}
	if len(lengths) == 1 {
		return lengths[0]
	}
	var best = lengths[0]
	var bestDist = abs(hl - best)
	for _, l := range lengths[1:] {
		if d := abs(hl - l); d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Score scores hyp against the cached reference tables, result lies in [0,1]
func (s *Scorer) Score(hyp []string, ref *Reference) float64 {
	var hl = len(hyp)
	if hl == 0 || ref == nil {
		return 0
	}
	var rl = BestMatchLength(hl, ref.Lengths)
	if rl == 0 {
		return 0
	}
	var counts = MakeCounts(hyp, ref.Ngrams, s.n)
	var m = s.n
	var w = s.weights
	if rl < s.n {
		m = rl
		w = make([]float64, m)
		for i := range w {
			w[i] = 1 / float64(m)
		}
	}
	var sum float64
	for i := 0; i < m; i++ {
		var add float64
		if i == 0 {
			if counts.Total[0] == 0 || counts.Clipped[0] == 0 {
				return 0
			}
		} else {
			add = 1
		}
		sum += w[i] * math.Log((counts.Clipped[i]+add)/(counts.Total[i]+add))
	}
	return BrevityPenalty(hl, rl+1) * math.Exp(sum)
}
