package trainer

import "context"
import "fmt"
import "io"
import "log/slog"
import "os"
import "path/filepath"
import "time"

import "github.com/pkg/errors"

import "github.com/neurlang/dtrain/bleu"
import "github.com/neurlang/dtrain/datasets"
import "github.com/neurlang/dtrain/decoder"
import "github.com/neurlang/dtrain/kbest"
import "github.com/neurlang/dtrain/learning"
import "github.com/neurlang/dtrain/pairs"
import "github.com/neurlang/dtrain/weights"

// ErrNoInput is returned when the corpus holds no sentence
var ErrNoInput = errors.New("empty corpus")

// Result is the outcome of a training run
type Result struct {
	Epochs  []EpochStats
	Best    int            // epoch with the highest average 1-best gold score
	Weights weights.Vector // selected weights, nil for Discard
}

// Trainer owns the weights and drives the decoder over the corpus
type Trainer struct {
	Config

	dec     decoder.Decoder
	dict    *weights.Dictionary
	engine  *learning.Engine
	sampler *pairs.Sampler
	w       weights.Vector

	scorer *bleu.Scorer
	cache  *bleu.Cache
	memo   *bleu.Memo
	log    *slog.Logger

	sources []string
	running int // sentences processed over all epochs
}

// New creates a trainer. init are the starting weights, they are updated in place.
func New(cfg Config, dec decoder.Decoder, dict *weights.Dictionary, engine *learning.Engine,
	sampler *pairs.Sampler, init weights.Vector, log *slog.Logger) *Trainer {
	if init == nil {
		init = weights.New()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Trainer{
		Config:  cfg,
		dec:     dec,
		dict:    dict,
		engine:  engine,
		sampler: sampler,
		w:       init,
		scorer:  bleu.NewScorer(cfg.N),
		cache:   bleu.NewCache(cfg.N),
		memo:    bleu.NewMemo(cfg.ScoreCacheBytes),
		log:     log,
	}
}

// Weights returns the current weights
func (t *Trainer) Weights() weights.Vector {
	return t.w
}

// Run trains for the configured number of epochs. The corpus is read in
// epoch 0 and kept in memory, its references are cached at the same time.
// A cancelled context stops the run between two sentences.
func (t *Trainer) Run(ctx context.Context, corpus io.Reader) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	var res Result
	var average weights.Average
	var best weights.Vector
	for epoch := 0; epoch < t.Epochs; epoch++ {
		var start = time.Now()
		var sum tally
		var step = t.newSentenceFunc(ctx, epoch, &sum)
		if epoch == 0 {
			err := datasets.Loop(corpus, func(i int, s datasets.Sample) error {
				if t.StopAfter > 0 && i >= t.StopAfter {
					return errStop
				}
				t.sources = append(t.sources, s.Source)
				t.cache.Add(s.References)
				return step(i, s.Source)
			})
			if err != nil && err != errStop {
				return nil, err
			}
			if len(t.sources) == 0 {
				return nil, ErrNoInput
			}
		} else {
			for i, source := range t.sources {
				if err := step(i, source); err != nil {
					return nil, err
				}
			}
		}
		if t.Progress != nil {
			fmt.Fprintln(t.Progress)
		}

		batchLoss, _ := t.engine.BatchLoss()
		if !t.NoUpdate {
			t.engine.EndEpoch(t.w, t.running-1)
		}
		average.Add(t.w)

		var prev *EpochStats
		if epoch > 0 {
			prev = &res.Epochs[epoch-1]
		}
		var stats = sum.stats(epoch, prev, batchLoss, start)
		res.Epochs = append(res.Epochs, stats)
		if epoch == 0 || stats.Score > res.Epochs[res.Best].Score {
			res.Best = epoch
			best = t.w.Clone()
		}
		t.log.Info("epoch done", "stats", stats)
		if hits, misses := t.memo.Stats(); hits+misses > 0 {
			t.log.Debug("score memo", "hits", hits, "misses", misses)
		}

		if t.Keep {
			name := filepath.Join(t.WorkDir, fmt.Sprintf("weights.%d.gz", epoch))
			if err := weights.WriteFile(name, t.w, t.dict); err != nil {
				return nil, err
			}
		}
	}

	switch t.Select {
	case Discard:
		t.log.Info("weights discarded")
		return &res, nil
	case Best:
		res.Weights = best
	case Average:
		res.Weights = average.Vector()
	default:
		res.Weights = t.w.Clone()
	}
	t.log.Info("training done", "select", t.Select.String(), "best_epoch", res.Best,
		"best_score", res.Epochs[res.Best].Score, "nonzero", res.Weights.NonZero())
	for _, name := range t.PrintWeights {
		if f, ok := t.dict.Lookup(name); ok {
			t.log.Info("weight", "name", name, "value", res.Weights.Get(f))
		}
	}
	if t.Output != "" {
		if err := weights.WriteFile(t.Output, res.Weights, t.dict); err != nil {
			return nil, err
		}
	}
	return &res, nil
}

var errStop = errors.New("stop after")

// newSentenceFunc returns the step processing sentence i of an epoch
func (t *Trainer) newSentenceFunc(ctx context.Context, epoch int, sum *tally) func(i int, source string) error {
	return func(i int, source string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.dec.SetWeights(t.w.Dense(t.dict.Len()))
		list, err := t.dec.Decode(source, t.K)
		if err != nil {
			return errors.Wrapf(err, "decoding sentence %d", i)
		}
		var ref = t.cache.Get(i)
		list.Score(t.Threads, func(tokens []string) float64 {
			return t.memo.Score(t.scorer, i, tokens, ref)
		})

		sum.sentences++
		sum.listSize += len(list)
		sum.features += list.FeatureCount()
		if len(list) > 0 {
			sum.score += list[0].Gold
			sum.model += list[0].Model
		}
		if t.OutputRanking != "" {
			if err := t.writeRanking(epoch, i, list); err != nil {
				return err
			}
		}

		ps := t.sampler.Sample(list)
		switch {
		case t.sampler.Strategy == pairs.OutputOnly:
			if err := t.writePairs(i, ps); err != nil {
				return err
			}
		case t.NoUpdate:
			_, diag := t.engine.Collect(ps, t.w)
			sum.add(diag)
		default:
			sum.add(t.engine.Apply(ps, t.w, t.running))
		}
		t.running++

		if t.Progress != nil {
			if sum.sentences%100 == 0 {
				fmt.Fprintf(t.Progress, ". %d\n", sum.sentences)
			} else {
				fmt.Fprint(t.Progress, ".")
			}
		}
		return nil
	}
}

// writeRanking writes the list in decoder order as "rank gold model tokens" lines
func (t *Trainer) writeRanking(epoch, i int, list kbest.List) error {
	var sorted = append(kbest.List(nil), list...)
	sorted.SortByRank()
	name := filepath.Join(t.OutputRanking, fmt.Sprintf("%d.%d.list", epoch, i))
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "ranking")
	}
	for _, h := range sorted {
		fmt.Fprintf(file, "%d\t%g\t%g\t%s\n", h.Rank, h.Gold, h.Model, h.String())
	}
	return errors.Wrap(file.Close(), "ranking")
}

// writePairs writes "sentence better_gold worse_gold difference" lines
func (t *Trainer) writePairs(i int, ps []pairs.Pair) error {
	if t.OutputPairs == nil {
		return nil
	}
	for _, p := range ps {
		_, err := fmt.Fprintf(t.OutputPairs, "%d\t%g\t%g\t%s\n", i, p.Better.Gold, p.Worse.Gold,
			weights.String(p.Diff(), t.dict))
		if err != nil {
			return errors.Wrap(err, "pairs")
		}
	}
	return nil
}
