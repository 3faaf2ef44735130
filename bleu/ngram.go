// Package bleu implements the approximate per-sentence BLEU used as the ranking objective
package bleu

import "strings"

// sep joins the words of an n-gram key, tokens never contain it
const sep = "\x00"

// Ngram is one n-gram, Order is the number of words joined in Words
type Ngram struct {
	Order int
	Words string
}

// Ngrams counts the n-grams of one token sequence
type Ngrams map[Ngram]int

// MakeNgrams counts all n-grams of orders 1..n in s
func MakeNgrams(s []string, n int) Ngrams {
	var ngrams = make(Ngrams)
	for i := range s {
		var b strings.Builder
		for j := i; j < i+n && j < len(s); j++ {
			if j > i {
				b.WriteString(sep)
			}
			b.WriteString(s[j])
			ngrams[Ngram{Order: j - i + 1, Words: b.String()}]++
		}
	}
	return ngrams
}

// Counts holds clipped and total n-gram counts per order, index 0 is unigrams
type Counts struct {
	Clipped []float64
	Total   []float64
}

// NewCounts makes zeroed counts for orders 1..n
func NewCounts(n int) Counts {
	return Counts{
		Clipped: make([]float64, n),
		Total:   make([]float64, n),
	}
}

// N is the maximum order
func (c Counts) N() int {
	return len(c.Total)
}

// Add records count occurrences of an n-gram of the given order (1-based)
// that appears at most refCount times in any reference
func (c Counts) Add(count, refCount, order int) {
	if count > refCount {
		c.Clipped[order-1] += float64(refCount)
	} else {
		c.Clipped[order-1] += float64(count)
	}
	c.Total[order-1] += float64(count)
}

// Plus adds o to c, the orders of o must not exceed those of c
func (c Counts) Plus(o Counts) {
	for i := range o.Total {
		c.Clipped[i] += o.Clipped[i]
		c.Total[i] += o.Total[i]
	}
}

// Zero resets all counts
func (c Counts) Zero() {
	for i := range c.Total {
		c.Clipped[i] = 0
		c.Total[i] = 0
	}
}

// MakeCounts clips the n-grams of hyp against the maximum count over all references
func MakeCounts(hyp []string, refs []Ngrams, n int) Counts {
	var counts = NewCounts(n)
	for ng, count := range MakeNgrams(hyp, n) {
		var maxRef int
		for _, r := range refs {
			if c := r[ng]; c > maxRef {
				maxRef = c
			}
		}
		counts.Add(count, maxRef, ng.Order)
	}
	return counts
}
