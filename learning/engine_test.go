package learning

import "math"
import "testing"

import "github.com/neurlang/dtrain/kbest"
import "github.com/neurlang/dtrain/pairs"
import "github.com/neurlang/dtrain/weights"

const (
	a uint32 = iota
	b
)

func pair(betterModel, worseModel float64) []pairs.Pair {
	return []pairs.Pair{{
		Better: kbest.Hypothesis{Gold: 0.9, Model: betterModel, Features: weights.Vector{a: 1}},
		Worse:  kbest.Hypothesis{Gold: 0.1, Model: worseModel, Features: weights.Vector{b: 1}},
	}}
}

func TestPerceptronUpdate(t *testing.T) {
	e := New(HyperParameters{Eta: 1})
	w := weights.New()
	diag := e.Apply(pair(0, 0), w, 0)
	if !w.Equal(weights.Vector{a: 1, b: -1}, 0) {
		t.Errorf("w = %v", w)
	}
	if diag.Pairs != 1 || diag.RankErrors != 1 || diag.Updates != 1 {
		t.Errorf("diagnostics %+v", diag)
	}
	if diag.LossAfter > diag.LossBefore {
		t.Errorf("loss grew: %v -> %v", diag.LossBefore, diag.LossAfter)
	}
	if !diag.Applied.Equal(w, 0) || !diag.Delta.Equal(w, 0) {
		t.Errorf("applied %v delta %v", diag.Applied, diag.Delta)
	}
}

func TestPerfectRankingNoUpdate(t *testing.T) {
	e := New(HyperParameters{Eta: 1})
	w := weights.Vector{a: 1}
	diag := e.Apply(pair(1, 0), w, 0)
	if diag.Updates != 0 || len(diag.Applied) != 0 {
		t.Errorf("updated a perfect ranking: %+v", diag)
	}
	if !w.Equal(weights.Vector{a: 1}, 0) {
		t.Errorf("w = %v", w)
	}
}

func TestMarginViolation(t *testing.T) {
	e := New(HyperParameters{Eta: 1, Margin: 2})
	w := weights.New()
	diag := e.Apply(pair(1, 0), w, 0)
	if diag.MarginViolations != 1 || diag.RankErrors != 0 || diag.Updates != 1 {
		t.Errorf("diagnostics %+v", diag)
	}
	if w.Get(a) != 1 {
		t.Errorf("w = %v", w)
	}
}

func TestGammaShrink(t *testing.T) {
	e := New(HyperParameters{Eta: 1, Gamma: 0.25})
	w := weights.New()
	e.Apply(pair(0, 0), w, 0)
	if !w.Equal(weights.Vector{a: 0.5, b: -0.5}, 1e-12) {
		t.Errorf("w = %v", w)
	}
}

func TestRepeatStopsWhenRanked(t *testing.T) {
	e := New(HyperParameters{Eta: 1, Repeat: 3})
	w := weights.New()
	diag := e.Apply(pair(0, 0), w, 0)
	if !w.Equal(weights.Vector{a: 1, b: -1}, 0) {
		t.Errorf("w = %v", w)
	}
	if diag.Updates != 1 || diag.LossAfter != 0 {
		t.Errorf("diagnostics %+v", diag)
	}
}

func TestPerCoordinate(t *testing.T) {
	e := New(HyperParameters{Eta: 1, Mode: PerCoordinate})
	w := weights.New()
	for i := 0; i < 3; i++ {
		e.Apply(pair(0, 0), w, i)
	}
	if w.Get(a) != 2.5 || w.Get(b) != -2.5 {
		t.Errorf("simple: w = %v", w)
	}

	e = New(HyperParameters{Eta: 0.5, Mode: PerCoordinate, Coordinate: Adagrad})
	w = weights.New()
	e.Apply(pair(0, 0), w, 0)
	e.Apply(pair(0, 0), w, 1)
	if w.Get(a) != 1 {
		t.Errorf("adagrad: w = %v", w)
	}
}

func TestBatch(t *testing.T) {
	e := New(HyperParameters{Eta: 0.5, Mode: Batch})
	w := weights.New()
	e.Apply(pair(-1, 0), w, 0)
	e.Apply(pair(-1, 0), w, 1)
	if len(w) != 0 {
		t.Errorf("batch mode changed weights: %v", w)
	}
	if loss, n := e.BatchLoss(); loss != 2 || n != 2 {
		t.Errorf("batch loss %v pairs %d", loss, n)
	}
	e.EndEpoch(w, 1)
	if !w.Equal(weights.Vector{a: 1, b: -1}, 0) {
		t.Errorf("w = %v", w)
	}
	if _, n := e.BatchLoss(); n != 0 {
		t.Errorf("batch not reset")
	}
}

func TestCollect(t *testing.T) {
	e := New(HyperParameters{Eta: 1})
	w := weights.New()
	delta, diag := e.Collect(append(pair(0, 0), pair(1, 0)...), w)
	if len(w) != 0 {
		t.Errorf("collect changed weights")
	}
	if !delta.Equal(weights.Vector{a: 1, b: -1}, 0) || diag.Pairs != 2 || diag.Updates != 1 {
		t.Errorf("delta %v diag %+v", delta, diag)
	}
}

func TestL1(t *testing.T) {
	e := New(HyperParameters{Eta: 1, L1: L1Naive, L1Strength: 0.1})
	w := weights.New()
	e.Apply(pair(0, 0), w, 0)
	if !w.Equal(weights.Vector{a: 0.9, b: -0.9}, 1e-12) {
		t.Errorf("naive: w = %v", w)
	}

	e = New(HyperParameters{Eta: 1, L1: L1Clip, L1Strength: 5})
	w = weights.New()
	e.Apply(pair(0, 0), w, 0)
	if w.Get(a) != 0 || w.Get(b) != 0 {
		t.Errorf("clip crossed zero: w = %v", w)
	}

	e = New(HyperParameters{Eta: 1, L1: L1Cumulative, L1Strength: 0.3})
	w = weights.New()
	e.Apply(pair(0, 0), w, 0)
	if !w.Equal(weights.Vector{a: 0.7, b: -0.7}, 1e-12) {
		t.Errorf("cumulative: w = %v", w)
	}
}

func TestUntouchedNotRegularized(t *testing.T) {
	e := New(HyperParameters{Eta: 1, L1: L1Clip, L1Strength: 0.5})
	w := weights.Vector{7: 3}
	e.Apply(pair(0, 0), w, 0)
	if w.Get(7) != 3 {
		t.Errorf("untouched feature regularized: %v", w.Get(7))
	}
}

func TestRates(t *testing.T) {
	d := weights.NewDictionary()
	r := NewRates(d)
	rule, rb, other := d.ID("R:x"), d.ID("RB:x"), d.ID("Other")
	r.Set("R", 0.5)
	r.Save()
	if r.Rate(rule) != 0.5 || r.Rate(rb) != 1 || r.Rate(other) != 1 {
		t.Errorf("group rates %v %v %v", r.Rate(rule), r.Rate(rb), r.Rate(other))
	}
	r.Set("R:x", 2)
	if r.Rate(rule) != 2 {
		t.Errorf("feature rate did not win over group")
	}
	if x, ok := r.Lookup("R"); !ok || x != 0.5 {
		t.Errorf("lookup group = %v %v", x, ok)
	}
	r.Reset()
	if r.Rate(rule) != 0.5 {
		t.Errorf("reset: %v", r.Rate(rule))
	}

	e := New(HyperParameters{Eta: 1, Rates: r})
	w := weights.New()
	e.Apply([]pairs.Pair{{
		Better: kbest.Hypothesis{Gold: 1, Features: weights.Vector{rule: 1}},
		Worse:  kbest.Hypothesis{Gold: 0, Features: weights.Vector{other: 1}},
	}}, w, 0)
	if w.Get(rule) != 0.5 || w.Get(other) != -1 {
		t.Errorf("scaled update w = %v", w)
	}
}

func TestValidate(t *testing.T) {
	for _, h := range []HyperParameters{
		{Eta: 0},
		{Eta: 1, Gamma: -1},
		{Eta: 1, L1: L1Clip},
	} {
		if err := h.Validate(); err == nil {
			t.Errorf("%+v accepted", h)
		}
	}
	h := HyperParameters{Eta: 1}
	if err := h.Validate(); err != nil || !h.FasterPerceptron() {
		t.Errorf("valid parameters: %v", err)
	}
	if _, err := ParseRegularization("cumul"); err != nil {
		t.Error(err)
	}
	if _, ok, err := ParseCoordinate("adagrad"); !ok || err != nil {
		t.Errorf("adagrad: %v %v", ok, err)
	}
}

func FuzzClip(f *testing.F) {
	f.Add(1.0, 0.5)
	f.Add(-0.2, 3.0)
	f.Fuzz(func(t *testing.T, x, r float64) {
		if math.IsNaN(x) || math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return
		}
		y := Clip(x, r)
		if x > 0 && y < 0 || x < 0 && y > 0 {
			t.Errorf("Clip(%v, %v) = %v crossed zero", x, r, y)
		}
		if math.Abs(y) > math.Abs(x) {
			t.Errorf("Clip(%v, %v) = %v grew", x, r, y)
		}
		z, _ := Cumulative(x, r, 0)
		if x > 0 && z < 0 || x < 0 && z > 0 {
			t.Errorf("Cumulative(%v, %v) = %v crossed zero", x, r, z)
		}
	})
}
