// Package learning implements the pairwise ranking updates of the trainer
package learning

import "math"

import "github.com/neurlang/dtrain/pairs"
import "github.com/neurlang/dtrain/weights"

// Diagnostics describes the updates of one sentence
type Diagnostics struct {
	Pairs            int // pairs seen in the first pass
	RankErrors       int // pairs the model orders wrongly or ties
	MarginViolations int // correctly ranked pairs closer than the margin
	Updates          int // pairs which produced an update in the first pass

	LossBefore float64 // hinge loss of the pairs before the update
	LossAfter  float64 // hinge loss of the pairs under the updated weights

	NonZero int // nonzero weights afterwards

	Delta   weights.Vector // raw sum of the pair differences of the last pass
	Applied weights.Vector // change the weights actually received
}

// Engine applies the updates to a weight vector. It keeps the per-feature
// state the per-coordinate rates and the l1 regularizers need.
type Engine struct {
	HyperParameters

	counts    weights.Vector // per-coordinate update counts or squared sums
	decay     weights.Vector // naive l1 decay counts
	penalties weights.Vector // cumulative l1 penalty received so far

	batch      weights.Vector
	batchLoss  float64
	batchPairs int
}

// New creates an update engine
func New(h HyperParameters) *Engine {
	if h.Repeat < 1 {
		h.Repeat = 1
	}
	return &Engine{
		HyperParameters: h,
		counts:          weights.New(),
		decay:           weights.New(),
		penalties:       weights.New(),
		batch:           weights.New(),
	}
}

func hinge(modelDiff float64) float64 {
	if modelDiff >= 0 {
		return 0
	}
	return -modelDiff
}

type gated struct {
	diff      weights.Vector
	modelDiff float64
}

// gate decides which pairs cause an update. The model score difference is
// recomputed from w when current is set, otherwise the decoder scores are used.
func (e *Engine) gate(ps []pairs.Pair, w weights.Vector, current bool, diag *Diagnostics) (out []gated) {
	for _, p := range ps {
		better, worse := p.Better.Features, p.Worse.Features
		if e.Rescale {
			better, worse = unit(better), unit(worse)
		}
		var modelDiff = p.ModelDiff()
		if current || e.Rescale {
			modelDiff = w.Dot(better) - w.Dot(worse)
		}
		var rankError = modelDiff <= 0
		var violation = !rankError && modelDiff < e.Margin
		if diag != nil {
			diag.Pairs++
			diag.LossBefore += hinge(modelDiff)
			if rankError {
				diag.RankErrors++
			}
			if violation {
				diag.MarginViolations++
			}
		}
		if !rankError && !violation {
			continue
		}
		if diag != nil {
			diag.Updates++
		}
		out = append(out, gated{weights.Diff(better, worse), modelDiff})
	}
	return
}

func unit(v weights.Vector) weights.Vector {
	var n = v.L2Norm()
	if n == 0 {
		return v
	}
	var o = v.Clone()
	o.Scale(1 / n)
	return o
}

// Collect returns the summed difference of the pairs which would cause an
// update under w, without changing w.
func (e *Engine) Collect(ps []pairs.Pair, w weights.Vector) (weights.Vector, Diagnostics) {
	var diag Diagnostics
	var delta = weights.New()
	for _, g := range e.gate(ps, w, false, &diag) {
		delta.Add(g.diff)
	}
	diag.Delta = delta
	diag.NonZero = w.NonZero()
	return delta, diag
}

// Apply updates w in place from the pairs of one sentence. sentence is the
// running index of the sentence, it drives the cumulative l1 penalty.
func (e *Engine) Apply(ps []pairs.Pair, w weights.Vector, sentence int) Diagnostics {
	var diag Diagnostics
	var before = w.Clone()
	var delta weights.Vector
	for pass := 0; pass < e.Repeat; pass++ {
		var d *Diagnostics
		if pass == 0 {
			d = &diag
		}
		var updates = e.gate(ps, w, pass > 0, d)
		delta = weights.New()
		var sum = weights.New()
		for _, g := range updates {
			delta.Add(g.diff)
			switch e.Mode {
			case Batch:
				e.batch.Add(g.diff)
				e.batchLoss += hinge(g.modelDiff)
				e.batchPairs++
			case PerCoordinate:
				sum.Add(g.diff)
			default:
				w.AddScaled(e.Rates.Scale(g.diff), e.Eta)
				if e.Gamma > 0 {
					w.Scale(1 - 2*e.Gamma*e.Eta/float64(len(ps)))
				}
			}
		}
		if e.Mode == PerCoordinate {
			e.coordinate(e.Rates.Scale(sum), w)
		}
	}
	e.regularize(w, changed(w, before), sentence)
	if e.Rescale {
		if n := w.L2Norm(); n > 0 {
			w.Scale(1 / n)
		}
	}
	for _, p := range ps {
		better, worse := p.Better.Features, p.Worse.Features
		if e.Rescale {
			better, worse = unit(better), unit(worse)
		}
		diag.LossAfter += hinge(w.Dot(better) - w.Dot(worse))
	}
	diag.Delta = delta
	diag.Applied = weights.Diff(w, before)
	diag.Applied.Prune()
	diag.NonZero = w.NonZero()
	return diag
}

func (e *Engine) coordinate(sum, w weights.Vector) {
	for f, x := range sum {
		switch e.Coordinate {
		case Adagrad:
			if c := e.counts[f]; c == 0 {
				w[f] += x * e.Eta
			} else {
				w[f] += x * e.Eta * c
			}
			e.counts[f] += x * x
		default:
			w[f] += x / math.Max(1, e.counts[f])
			e.counts[f]++
		}
	}
}

func changed(w, before weights.Vector) (out []uint32) {
	for f, x := range w {
		if y, ok := before[f]; !ok || x != y {
			out = append(out, f)
		}
	}
	return
}

// BatchLoss returns the hinge loss and pair count accumulated in batch mode
func (e *Engine) BatchLoss() (float64, int) {
	return e.batchLoss, e.batchPairs
}

// EndEpoch applies the accumulated batch update to w. It does nothing
// outside of batch mode. sentence is the running index of the last sentence.
func (e *Engine) EndEpoch(w weights.Vector, sentence int) {
	if e.Mode != Batch {
		return
	}
	var before = w.Clone()
	w.AddScaled(e.Rates.Scale(e.batch), e.Eta)
	if e.Gamma > 0 && e.batchPairs > 0 {
		w.Scale(1 - 2*e.Gamma*e.Eta/float64(e.batchPairs))
	}
	e.regularize(w, changed(w, before), sentence)
	e.batch = weights.New()
	e.batchLoss = 0
	e.batchPairs = 0
}
