package pairs

import "errors"
import "math"
import "testing"

import "github.com/neurlang/dtrain/kbest"
import "github.com/neurlang/dtrain/weights"

func list(golds ...float64) kbest.List {
	var l = make(kbest.List, len(golds))
	for i, g := range golds {
		l[i] = kbest.Hypothesis{
			Gold:     g,
			Model:    -float64(i),
			Rank:     i,
			Features: weights.Vector{uint32(i): 1},
		}
	}
	return l
}

func TestTwoElements(t *testing.T) {
	for _, hiLo := range []float64{0.01, 0.1, 0.25, 0.5} {
		for _, st := range []Strategy{XYX, All, PRO, OutputOnly} {
			s := NewSampler(st, hiLo, 1)
			p := s.Sample(list(0.1, 0.9))
			if len(p) != 1 {
				t.Fatalf("%v hi_lo %v: %d pairs", st, hiLo, len(p))
			}
			if p[0].Better.Gold != 0.9 || p[0].Worse.Gold != 0.1 {
				t.Errorf("%v: wrong order %v %v", st, p[0].Better.Gold, p[0].Worse.Gold)
			}
		}
	}
}

func TestSmallLists(t *testing.T) {
	s := NewSampler(XYX, 0.1, 1)
	if p := s.Sample(nil); p != nil {
		t.Errorf("empty list gave pairs")
	}
	if p := s.Sample(list(0.5)); p != nil {
		t.Errorf("single hypothesis gave pairs")
	}
	if p := s.Sample(list(0.5, 0.5, 0.5)); len(p) != 0 {
		t.Errorf("all ties gave %d pairs", len(p))
	}
}

func TestSeparatorsNeverSplitTies(t *testing.T) {
	l := list(0.8, 0.8, 0.8, 0.7, 0.5, 0.3, 0.3, 0.1, 0.1, 0.1)
	l.SortByGold()
	hi, lo := Separators(l, 0.1)
	if hi != 3 {
		t.Errorf("sep_hi = %d, want 3", hi)
	}
	if lo != 7 {
		t.Errorf("sep_lo = %d, want 7", lo)
	}
	hi, lo = Separators(list(0.4, 0.3), 0.1)
	if hi != 1 || lo != 2 {
		t.Errorf("two elements: %d %d", hi, lo)
	}
}

func TestXYXGroups(t *testing.T) {
	s := NewSampler(XYX, 0.2, 1)
	p := s.Sample(list(1, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1))
	// sep = 2: 2*8 pairs from the top, 6*2 from the middle
	if len(p) != 28 {
		t.Errorf("pairs = %d, want 28", len(p))
	}
	a := NewSampler(All, 0.2, 1).Sample(list(1, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1))
	if len(a) != 45 {
		t.Errorf("all pairs = %d, want 45", len(a))
	}
}

func TestMaxPairsAndThreshold(t *testing.T) {
	s := NewSampler(All, 0.1, 1)
	s.MaxPairs = 3
	if p := s.Sample(list(1, 0.9, 0.8, 0.7, 0.6)); len(p) != 3 {
		t.Errorf("max pairs: %d", len(p))
	}
	s = NewSampler(All, 0.1, 1)
	s.Threshold = 0.25
	for _, p := range s.Sample(list(1, 0.9, 0.8, 0.7, 0.6)) {
		if p.Better.Gold-p.Worse.Gold < 0.25 {
			t.Errorf("gap %v below threshold", p.Better.Gold-p.Worse.Gold)
		}
	}
}

func TestMisrankedOnly(t *testing.T) {
	l := list(0.5, 0.1, 0.9)
	// sorted by gold the models are -2, 0, -1: only 0.9 vs 0.1 and 0.9 vs 0.5 are misranked
	s := NewSampler(All, 0.1, 1)
	s.MisrankedOnly = true
	p := s.Sample(l)
	if len(p) != 2 {
		t.Errorf("misranked pairs = %d, want 2", len(p))
	}
	for _, q := range p {
		if q.Better.Model > q.Worse.Model {
			t.Errorf("correctly ranked pair kept")
		}
	}
	if n := len(NewSampler(OutputOnly, 0.1, 1).Sample(list(0.1, 0.5, 0.9))); n != 3 {
		t.Errorf("output only filtered pairs: %d", n)
	}
}

func TestPRO(t *testing.T) {
	var golds []float64
	for i := 0; i < 100; i++ {
		golds = append(golds, float64(i%20)/20)
	}
	s := NewSampler(PRO, 0.1, 42)
	s.Threshold = 0.05
	p := s.Sample(list(golds...))
	if len(p) != ProXi {
		t.Fatalf("pro kept %d", len(p))
	}
	for i, q := range p {
		if q.Better.Gold-q.Worse.Gold <= 0.05 {
			t.Errorf("gap %v not above threshold", q.Better.Gold-q.Worse.Gold)
		}
		if i > 0 && q.Better.Gold-q.Worse.Gold > p[i-1].Better.Gold-p[i-1].Worse.Gold {
			t.Errorf("not sorted by gap")
		}
	}
	again := NewSampler(PRO, 0.1, 42)
	again.Threshold = 0.05
	if q := again.Sample(list(golds...)); q[7].Better.Rank != p[7].Better.Rank {
		t.Errorf("same seed, different sample")
	}
}

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"XYX", "all", "PRO", "output_pairs", "xyx"} {
		if _, err := ParseStrategy(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := ParseStrategy("some"); err == nil {
		t.Errorf("expected error")
	}
}

func TestDiff(t *testing.T) {
	p := Pair{
		Better: kbest.Hypothesis{Features: weights.Vector{0: 1, 1: 2}, Model: 3},
		Worse:  kbest.Hypothesis{Features: weights.Vector{1: 1, 2: 1}, Model: 1},
	}
	if !p.Diff().Equal(weights.Vector{0: 1, 1: 1, 2: -1}, 0) || p.ModelDiff() != 2 {
		t.Errorf("diff = %v", p.Diff())
	}
}

func FuzzNoTiedPairs(f *testing.F) {
	f.Add([]byte{3, 3, 1, 2, 2, 0, 9}, uint8(10))
	f.Fuzz(func(t *testing.T, golds []byte, frac uint8) {
		hiLo := float64(frac%50+1) / 100
		var g = make([]float64, len(golds))
		for i, b := range golds {
			g[i] = float64(b%8) / 8
		}
		for _, st := range []Strategy{XYX, All, PRO} {
			for _, p := range NewSampler(st, hiLo, 3).Sample(list(g...)) {
				if p.Better.Gold <= p.Worse.Gold {
					t.Errorf("%v: pair with gold %v vs %v", st, p.Better.Gold, p.Worse.Gold)
				}
			}
		}
	})
}

func TestValidate(t *testing.T) {
	for _, hiLo := range []float64{0.01, 0.1, 0.5} {
		if err := NewSampler(XYX, hiLo, 0).Validate(); err != nil {
			t.Errorf("%v: %v", hiLo, err)
		}
	}
	for _, hiLo := range []float64{0, 0.009, -0.1, 0.51, 1, math.NaN()} {
		if err := NewSampler(XYX, hiLo, 0).Validate(); !errors.Is(err, ErrSampler) {
			t.Errorf("%v: %v", hiLo, err)
		}
	}
	s := NewSampler(All, 0.1, 0)
	s.MaxPairs = -1
	if err := s.Validate(); !errors.Is(err, ErrSampler) {
		t.Errorf("max pairs: %v", err)
	}
}
