package session

import "context"
import "io"
import "log/slog"
import "sync"

import "github.com/pkg/errors"

import "github.com/neurlang/dtrain/datasets"
import "github.com/neurlang/dtrain/weights"

// Master hands the corpus out to its workers round-robin and merges the
// updates they return into a cumulative moving average.
type Master struct {
	Epochs int
	Rate   float64 // learning rate applied to the worker updates

	conns []Conn
	dict  *weights.Dictionary
	log   *slog.Logger

	mutex sync.Mutex
	w     weights.Vector
	err   error
}

// NewMaster creates a master over connections to its workers
func NewMaster(conns []Conn, dict *weights.Dictionary, epochs int, rate float64, logger *slog.Logger) *Master {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Master{
		Epochs: epochs,
		Rate:   rate,
		conns:  conns,
		dict:   dict,
		log:    logger,
		w:      weights.New(),
	}
}

// Weights returns a copy of the merged weights
func (m *Master) Weights() weights.Vector {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.w.Clone()
}

// Merge folds the update u returned for the moment-th sentence into the
// average: w += (rate*u - w) / moment
func (m *Master) Merge(u weights.Vector, moment int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var d = u.Clone()
	d.Scale(m.Rate)
	for f, x := range m.w {
		d[f] -= x
	}
	m.w.AddScaled(d, 1/float64(moment))
}

func (m *Master) fail(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err == nil {
		m.err = err
	}
}

func (m *Master) failed() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.err
}

// Run waits for every worker to say hello, trains for the configured epochs
// and finally sends shutdown to all workers.
func (m *Master) Run(ctx context.Context, corpus io.Reader) (weights.Vector, error) {
	var lines []string
	err := datasets.Loop(corpus, func(i int, s datasets.Sample) error {
		if len(s.References) == 0 {
			m.log.Warn("skipping sentence without references", "sentence", i)
			return nil
		}
		lines = append(lines, s.String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, conn := range m.conns {
		if _, err := receive(ctx, conn); err != nil {
			return nil, errors.Wrapf(err, "hello from worker %d", i)
		}
		m.log.Info("worker ready", "worker", i)
	}

	var free = make(chan int, len(m.conns))
	for i := range m.conns {
		free <- i
	}
	var wg sync.WaitGroup
	var moment = 1
dispatch:
	for epoch := 0; epoch < m.Epochs; epoch++ {
		m.log.Info("epoch", "epoch", epoch)
		for i, line := range lines {
			var j int
			select {
			case j = <-free:
			case <-ctx.Done():
				m.fail(ctx.Err())
				break dispatch
			}
			if m.failed() != nil {
				break dispatch
			}
			m.log.Debug("sending", "sentence", i, "worker", j)
			if err := m.conns[j].Send([]byte(line)); err != nil {
				m.fail(errors.Wrapf(err, "worker %d", j))
				break dispatch
			}
			wg.Add(1)
			go m.collect(ctx, &wg, free, j, moment)
			moment++
		}
	}
	wg.Wait()

	for _, conn := range m.conns {
		if err := conn.Send([]byte(Shutdown.String())); err != nil {
			m.log.Warn("shutdown", "err", err)
		}
	}
	if err := m.failed(); err != nil {
		return nil, err
	}
	var w = m.Weights()
	m.log.Info("done", "sentences", moment-1, "nonzero", w.NonZero())
	return w, nil
}

// collect receives the update of worker j, merges it and sends the new weights back
func (m *Master) collect(ctx context.Context, wg *sync.WaitGroup, free chan<- int, j, moment int) {
	defer wg.Done()
	defer func() { free <- j }()
	msg, err := receive(ctx, m.conns[j])
	if err != nil {
		m.fail(errors.Wrapf(err, "worker %d", j))
		return
	}
	u, err := weights.ParseString(string(msg), m.dict)
	if err != nil {
		m.fail(errors.Wrapf(err, "worker %d", j))
		return
	}
	m.Merge(u, moment)
	m.mutex.Lock()
	var kv = weights.String(m.w, m.dict)
	m.mutex.Unlock()
	if err := m.conns[j].Send([]byte(kv)); err != nil {
		m.fail(errors.Wrapf(err, "worker %d", j))
	}
}
