// Package pairs turns a scored k-best list into (better, worse) training pairs
package pairs

import "math"
import "math/rand"
import "sort"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/dtrain/kbest"
import "github.com/neurlang/dtrain/weights"

// Strategy selects how pairs are sampled
type Strategy int

const (
	// XYX compares the top X to the rest and the middle Y to the bottom X
	XYX Strategy = iota
	// All compares every hypothesis with every other one
	All
	// PRO samples random pairs with a large enough gold score gap (Hopkins and May 2011)
	PRO
	// OutputOnly samples like All but the pairs are only written out, never learned from
	OutputOnly
)

var strategyNames = map[Strategy]string{
	XYX:        "XYX",
	All:        "all",
	PRO:        "PRO",
	OutputOnly: "output_pairs",
}

func (s Strategy) String() string {
	return strategyNames[s]
}

// ErrStrategy is returned for unknown strategy names
var ErrStrategy = errors.New("unknown pair sampling strategy")

// ParseStrategy parses "XYX", "all", "PRO" or "output_pairs", case insensitive
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return XYX, errors.Wrapf(ErrStrategy, "%q", name)
}

// PRO sampling constants of Hopkins and May
const (
	ProGamma = 5000 // candidate pairs drawn
	ProXi    = 50   // pairs kept
)

// Pair is a training pair, Better has the strictly higher gold score
type Pair struct {
	Better, Worse kbest.Hypothesis
}

// Diff is the feature difference better - worse
func (p Pair) Diff() weights.Vector {
	return weights.Diff(p.Better.Features, p.Worse.Features)
}

// ModelDiff is the model score difference better - worse
func (p Pair) ModelDiff() float64 {
	return p.Better.Model - p.Worse.Model
}

// Sampler holds the sampling configuration
type Sampler struct {
	Strategy Strategy

	HiLo          float64 // fraction X of XYX, in [0.01, 0.5]
	Threshold     float64 // minimum gold score gap, 0 disables
	MaxPairs      int     // cap on pairs per sentence, 0 means no cap
	MisrankedOnly bool    // keep only pairs the model orders wrongly (faster perceptron)

	rand *rand.Rand
}

// ErrSampler is returned for an invalid sampler configuration
var ErrSampler = errors.New("invalid pair sampling parameter")

// Validate checks the ranges of the sampler parameters
func (s *Sampler) Validate() error {
	if !(s.HiLo >= 0.01 && s.HiLo <= 0.5) {
		return errors.Wrapf(ErrSampler, "hi_lo %v not in [0.01, 0.5]", s.HiLo)
	}
	if !(s.Threshold >= 0) {
		return errors.Wrapf(ErrSampler, "threshold %v", s.Threshold)
	}
	if s.MaxPairs < 0 {
		return errors.Wrapf(ErrSampler, "max_pairs %d", s.MaxPairs)
	}
	return nil
}

// NewSampler creates a sampler, seed drives PRO sampling
func NewSampler(strategy Strategy, hiLo float64, seed int64) *Sampler {
	return &Sampler{
		Strategy: strategy,
		HiLo:     hiLo,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

// Sample sorts list by descending gold score and returns its training pairs.
// Pairs with equal gold score are never returned.
func (s *Sampler) Sample(list kbest.List) []Pair {
	if len(list) < 2 {
		return nil
	}
	list.SortByGold()
	switch s.Strategy {
	case All:
		return s.all(list, s.MisrankedOnly)
	case OutputOnly:
		return s.all(list, false)
	case PRO:
		return s.pro(list)
	default:
		return s.xyx(list)
	}
}

// good reports whether hypotheses a and b (a sorted before b) form a usable pair
func (s *Sampler) good(a, b *kbest.Hypothesis, misrankedOnly bool) bool {
	if a.Gold == b.Gold {
		return false
	}
	if s.Threshold > 0 && math.Abs(a.Gold-b.Gold) < s.Threshold {
		return false
	}
	if misrankedOnly && a.Model > b.Model {
		return false
	}
	return true
}

func (s *Sampler) full(pairs []Pair) bool {
	return s.MaxPairs > 0 && len(pairs) >= s.MaxPairs
}

func (s *Sampler) all(l kbest.List, misrankedOnly bool) (pairs []Pair) {
	for i := 0; i < len(l)-1; i++ {
		for j := i + 1; j < len(l); j++ {
			if s.full(pairs) {
				return
			}
			if s.good(&l[i], &l[j], misrankedOnly) {
				pairs = append(pairs, Pair{l[i], l[j]})
			}
		}
	}
	return
}

// Separators returns the XYX group bounds of a list of size sz sorted by gold:
// hi is [0, sepHi), lo is [sepLo, sz). Both are moved so ties are never split.
func Separators(l kbest.List, hiLo float64) (sepHi, sepLo int) {
	sz := len(l)
	sep := int(math.Round(float64(sz) * hiLo))
	if sep > sz {
		sep = sz
	}
	sepHi = sep
	if sz > 4 {
		if sepHi < 1 {
			sepHi = 1
		}
		for sepHi < sz && l[sepHi-1].Gold == l[sepHi].Gold {
			sepHi++
		}
	} else {
		sepHi = 1
	}
	sepLo = sz - sep
	for sepLo > 0 && sepLo < sz && l[sepLo-1].Gold == l[sepLo].Gold {
		sepLo--
	}
	return
}

func (s *Sampler) xyx(l kbest.List) (pairs []Pair) {
	sz := len(l)
	sepHi, sepLo := Separators(l, s.HiLo)
	for i := 0; i < sepHi; i++ {
		for j := sepHi; j < sz; j++ {
			if s.full(pairs) {
				return
			}
			if s.good(&l[i], &l[j], s.MisrankedOnly) {
				pairs = append(pairs, Pair{l[i], l[j]})
			}
		}
	}
	for i := sepHi; i < sepLo; i++ {
		for j := sepLo; j < sz; j++ {
			if s.full(pairs) {
				return
			}
			if s.good(&l[i], &l[j], s.MisrankedOnly) {
				pairs = append(pairs, Pair{l[i], l[j]})
			}
		}
	}
	return
}

func (s *Sampler) pro(l kbest.List) (pairs []Pair) {
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(0))
	}
	sz := len(l)
	var seen = make(map[[2]int]struct{})
	for n := 0; n < ProGamma; n++ {
		i, j := s.rand.Intn(sz), s.rand.Intn(sz)
		if i > j {
			i, j = j, i
		}
		if i == j || l[i].Gold == l[j].Gold {
			continue
		}
		if _, ok := seen[[2]int{i, j}]; ok {
			continue
		}
		seen[[2]int{i, j}] = struct{}{}
		if math.Abs(l[i].Gold-l[j].Gold) <= s.Threshold {
			continue
		}
		if s.good(&l[i], &l[j], s.MisrankedOnly) {
			pairs = append(pairs, Pair{l[i], l[j]})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Better.Gold-pairs[a].Worse.Gold > pairs[b].Better.Gold-pairs[b].Worse.Gold
	})
	var keep = ProXi
	if s.MaxPairs > 0 && s.MaxPairs < keep {
		keep = s.MaxPairs
	}
	if len(pairs) > keep {
		pairs = pairs[:keep]
	}
	return
}
