// Package session serves the decode, score and update cycle over a socket.
// A Session answers the commands of one peer, a Worker and a Master split
// the training corpus over several sessions (downpour).
package session

import "context"
import "encoding/json"
import "io"
import "log"
import "log/slog"
import "os"
import "strconv"

import "github.com/google/uuid"
import "github.com/pkg/errors"

import "github.com/neurlang/dtrain/bleu"
import "github.com/neurlang/dtrain/decoder"
import "github.com/neurlang/dtrain/kbest"
import "github.com/neurlang/dtrain/learning"
import "github.com/neurlang/dtrain/pairs"
import "github.com/neurlang/dtrain/weights"

// Replies of the protocol
const (
	ReplyHello = "hello"
	ReplyOK    = "ok"
	ReplyOff   = "off"
	ReplyError = "error: "
)

type Config struct {
	K       int    // k-best list size of learn requests
	N       int    // BLEU order
	Output  string // weights written after every learn request and at shutdown
	Threads int    // goroutines scoring a k-best list
}

// Session holds the state bound to one peer: the weights and the learning
// rates, each with the snapshot the reset commands return to.
type Session struct {
	ID uuid.UUID
	Config

	dec     decoder.Decoder
	dict    *weights.Dictionary
	engine  *learning.Engine
	sampler *pairs.Sampler
	scorer  *bleu.Scorer

	w, original weights.Vector
	rates       *learning.Rates

	sentences int
	log       *slog.Logger
	debug     *log.Logger
}

// New creates a session. The sampler defaults to XYX and the rate table
// of the engine is created when missing.
func New(cfg Config, dec decoder.Decoder, dict *weights.Dictionary, engine *learning.Engine,
	sampler *pairs.Sampler, init weights.Vector, logger *slog.Logger) *Session {
	if init == nil {
		init = weights.New()
	}
	if sampler == nil {
		sampler = pairs.NewSampler(pairs.XYX, 0.1, 0)
	}
	if engine.Rates == nil {
		engine.Rates = learning.NewRates(dict)
	}
	engine.Rates.Save()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var id = uuid.New()
	return &Session{
		ID:       id,
		Config:   cfg,
		dec:      dec,
		dict:     dict,
		engine:   engine,
		sampler:  sampler,
		scorer:   bleu.NewScorer(cfg.N),
		w:        init,
		original: init.Clone(),
		rates:    engine.Rates,
		log:      logger.With("session", id.String()),
	}
}

// SetLogger appends a JSON record of every learn request to the named file
func (s *Session) SetLogger(filename string) error {
	outfile, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return errors.Wrap(err, "debug output")
	}
	s.debug = log.New(outfile, "", 0)
	return nil
}

// Weights returns the current weights
func (s *Session) Weights() weights.Vector {
	return s.w
}

func (s *Session) setWeights(v weights.Vector) {
	for f := range s.w {
		delete(s.w, f)
	}
	s.w.Add(v)
}

// Persist writes the weights to the output file, if one is configured
func (s *Session) Persist() error {
	if s.Output == "" {
		return nil
	}
	return weights.WriteFile(s.Output, s.w, s.dict)
}

func (s *Session) decode(source string, k int) (kbest.List, error) {
	s.dec.SetWeights(s.w.Dense(s.dict.Len()))
	list, err := s.dec.Decode(source, k)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.Errorf("no translation for %q", source)
	}
	return list, nil
}

// Handle executes one command. stop is set after shutdown.
func (s *Session) Handle(cmd Command) (reply string, stop bool) {
	var err error
	switch cmd.Kind {
	case Translate:
		var list kbest.List
		if list, err = s.decode(cmd.Source, 1); err == nil {
			return list[0].String(), false
		}
	case Learn:
		err = s.learn(cmd)
	case SetLearningRate:
		s.rates.Set(cmd.Name, cmd.Value)
	case SetLearningRates:
		for name, x := range cmd.Values {
			s.rates.Set(name, x)
		}
	case ResetLearningRate:
		s.rates.Restore(cmd.Name)
	case ResetLearningRates:
		s.rates.Reset()
	case SetWeight:
		s.w[s.dict.ID(cmd.Name)] = cmd.Value
	case GetWeight:
		var x float64
		if f, ok := s.dict.Lookup(cmd.Name); ok {
			x = s.w[f]
		}
		return strconv.FormatFloat(x, 'g', -1, 64), false
	case ResetWeights:
		s.setWeights(s.original)
	case Shutdown:
		if err := s.Persist(); err != nil {
			s.log.Error("persisting weights", "err", err)
		}
		return ReplyOff, true
	default:
		err = ErrCommand
	}
	if err != nil {
		s.log.Warn("command failed", "kind", cmd.Kind.String(), "err", err)
		return ReplyError + err.Error(), false
	}
	return ReplyOK, false
}

// learn decodes, scores and updates from one source with its references
func (s *Session) learn(cmd Command) error {
	var ref = bleu.NewReference(cmd.References, s.N)
	list, err := s.decode(cmd.Source, s.K)
	if err != nil {
		return err
	}
	list.Score(s.Threads, func(tokens []string) float64 {
		return s.scorer.Score(tokens, ref)
	})
	var target = list[0].String()
	var before weights.Vector
	if s.debug != nil {
		before = s.w.Clone()
	}
	diag := s.engine.Apply(s.sampler.Sample(list), s.w, s.sentences)
	s.sentences++
	s.log.Debug("learned", "source", cmd.Source, "pairs", diag.Pairs,
		"rank_errors", diag.RankErrors, "nonzero", diag.NonZero)
	if s.debug != nil {
		s.dump(cmd, target, list, before, diag)
	}
	return s.Persist()
}

type dumpHypothesis struct {
	Tokens   []string           `json:"tokens"`
	Gold     float64            `json:"gold"`
	Model    float64            `json:"model"`
	Rank     int                `json:"rank"`
	Features map[string]float64 `json:"features"`
}

type dumpRecord struct {
	ID            string             `json:"id"`
	Session       string             `json:"session"`
	Source        string             `json:"source"`
	Target        string             `json:"target"`
	References    []string           `json:"references"`
	Kbest         []dumpHypothesis   `json:"kbest"`
	WeightsBefore map[string]float64 `json:"weights_before"`
	WeightsAfter  map[string]float64 `json:"weights_after"`
	Update        map[string]float64 `json:"update_raw"`
	Scaled        map[string]float64 `json:"update_scaled"`
}

func (s *Session) dump(cmd Command, target string, list kbest.List, before weights.Vector, diag learning.Diagnostics) {
	list.SortByRank()
	var rec = dumpRecord{
		ID:            uuid.NewString(),
		Session:       s.ID.String(),
		Source:        cmd.Source,
		Target:        target,
		References:    cmd.References,
		WeightsBefore: s.dict.Named(before),
		WeightsAfter:  s.dict.Named(s.w),
		Update:        s.dict.Named(diag.Delta),
		Scaled:        s.dict.Named(diag.Applied),
	}
	for _, h := range list {
		rec.Kbest = append(rec.Kbest, dumpHypothesis{
			Tokens:   h.Tokens,
			Gold:     h.Gold,
			Model:    h.Model,
			Rank:     h.Rank,
			Features: s.dict.Named(h.Features),
		})
	}
	data, err := json.Marshal(rec)
	if err != nil {
		s.log.Error("debug record", "err", err)
		return
	}
	s.debug.Println(string(data))
}

// Serve greets the peer and answers its commands until shutdown. Requests
// never overlap. When ctx is done the weights are persisted and ctx's error
// is returned.
func (s *Session) Serve(ctx context.Context, conn Conn) error {
	if err := conn.Send([]byte(ReplyHello)); err != nil {
		return err
	}
	s.log.Info("serving", "k", s.K, "N", s.N)
	for {
		msg, err := receive(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				if perr := s.Persist(); perr != nil {
					s.log.Error("persisting weights", "err", perr)
				}
			}
			return err
		}
		var reply string
		var stop bool
		cmd, err := Parse(msg)
		if err != nil {
			s.log.Warn("rejected message", "err", err)
			reply = ReplyError + err.Error()
		} else {
			reply, stop = s.Handle(cmd)
		}
		if err := conn.Send([]byte(reply)); err != nil {
			return err
		}
		if stop {
			s.log.Info("shutdown", "sentences", s.sentences)
			return nil
		}
	}
}
