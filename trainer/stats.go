package trainer

import "log/slog"
import "time"

import "github.com/neurlang/dtrain/learning"

// EpochStats summarizes one epoch. Per-sentence values are averages.
type EpochStats struct {
	Epoch     int
	Sentences int

	Score, Model         float64 // 1-best gold and model score
	ScoreDiff, ModelDiff float64 // change against the previous epoch

	Pairs            float64
	RankErrors       float64
	MarginViolations float64
	NonZero          float64 // nonzero weights after the update

	BatchLoss       float64 // summed hinge loss of the batch update
	LossImprovement float64 // k-best loss reduction by the updates in percent

	ListSize float64 // k-best list length
	Features float64 // active features per list

	Duration time.Duration
}

// LogValue groups the statistics for slog
func (s EpochStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("epoch", s.Epoch),
		slog.Int("sentences", s.Sentences),
		slog.Float64("score", s.Score),
		slog.Float64("score_diff", s.ScoreDiff),
		slog.Float64("model", s.Model),
		slog.Float64("model_diff", s.ModelDiff),
		slog.Float64("pairs", s.Pairs),
		slog.Float64("rank_errors", s.RankErrors),
		slog.Float64("margin_violations", s.MarginViolations),
		slog.Float64("nonzero", s.NonZero),
		slog.Float64("batch_loss", s.BatchLoss),
		slog.Float64("loss_improvement", s.LossImprovement),
		slog.Float64("list_size", s.ListSize),
		slog.Float64("features", s.Features),
		slog.Duration("duration", s.Duration),
	)
}

// tally sums the per-sentence values of an epoch
type tally struct {
	sentences  int
	score      float64
	model      float64
	pairs      int
	rankErrors int
	violations int
	nonzero    int
	lossBefore float64
	lossAfter  float64
	listSize   int
	features   int
}

func (t *tally) add(d learning.Diagnostics) {
	t.pairs += d.Pairs
	t.rankErrors += d.RankErrors
	t.violations += d.MarginViolations
	t.nonzero += d.NonZero
	t.lossBefore += d.LossBefore
	t.lossAfter += d.LossAfter
}

func (t *tally) stats(epoch int, prev *EpochStats, batchLoss float64, start time.Time) EpochStats {
	var s = EpochStats{
		Epoch:     epoch,
		Sentences: t.sentences,
		BatchLoss: batchLoss,
		Duration:  time.Since(start),
	}
	if t.sentences > 0 {
		n := float64(t.sentences)
		s.Score = t.score / n
		s.Model = t.model / n
		s.Pairs = float64(t.pairs) / n
		s.RankErrors = float64(t.rankErrors) / n
		s.MarginViolations = float64(t.violations) / n
		s.NonZero = float64(t.nonzero) / n
		s.ListSize = float64(t.listSize) / n
		s.Features = float64(t.features) / n
	}
	if t.lossBefore > 0 {
		s.LossImprovement = 100 * (t.lossBefore - t.lossAfter) / t.lossBefore
	}
	if prev != nil {
		s.ScoreDiff = s.Score - prev.Score
		s.ModelDiff = s.Model - prev.Model
	}
	return s
}
