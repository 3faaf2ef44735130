package session

import "context"

import "github.com/neurlang/dtrain/bleu"
import "github.com/neurlang/dtrain/weights"

// Worker is the downpour worker. For every sentence a master sends it
// replies with the collected update as a kv string, leaving its weights
// alone, and continues from the weights the master sends back.
type Worker struct {
	*Session
}

// NewWorker wraps a session into a worker
func NewWorker(s *Session) *Worker {
	return &Worker{s}
}

// collect decodes and scores one sentence and sums the differences of the
// pairs that would cause an update under the current weights
func (w *Worker) collect(cmd Command) (weights.Vector, error) {
	var ref = bleu.NewReference(cmd.References, w.N)
	list, err := w.decode(cmd.Source, w.K)
	if err != nil {
		return nil, err
	}
	list.Score(w.Threads, func(tokens []string) float64 {
		return w.scorer.Score(tokens, ref)
	})
	delta, diag := w.engine.Collect(w.sampler.Sample(list), w.w)
	w.sentences++
	w.log.Debug("collected", "source", cmd.Source, "pairs", diag.Pairs,
		"rank_errors", diag.RankErrors, "updates", diag.Updates)
	return delta, nil
}

// Run serves the master until it sends shutdown or ctx is done
func (w *Worker) Run(ctx context.Context, conn Conn) error {
	if err := conn.Send([]byte(ReplyHello)); err != nil {
		return err
	}
	for {
		msg, err := receive(ctx, conn)
		if err != nil {
			return err
		}
		cmd, err := Parse(msg)
		if err != nil {
			w.log.Warn("rejected message", "err", err)
			if err := conn.Send([]byte(ReplyError + err.Error())); err != nil {
				return err
			}
			continue
		}
		if cmd.Kind != Learn {
			reply, stop := w.Handle(cmd)
			if err := conn.Send([]byte(reply)); err != nil {
				return err
			}
			if stop {
				w.log.Info("shutdown", "sentences", w.sentences)
				return nil
			}
			continue
		}
		delta, err := w.collect(cmd)
		if err != nil {
			w.log.Warn("collecting update failed", "err", err)
			delta = weights.New()
		}
		if err := conn.Send([]byte(weights.String(delta, w.dict))); err != nil {
			return err
		}
		msg, err = receive(ctx, conn)
		if err != nil {
			return err
		}
		v, err := weights.ParseString(string(msg), w.dict)
		if err != nil {
			return err
		}
		w.setWeights(v)
	}
}
