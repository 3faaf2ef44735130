package main

import "context"
import "flag"
import "fmt"
import "os"
import "os/signal"

import "github.com/neurlang/dtrain/conf"
import "github.com/neurlang/dtrain/decoder"
import "github.com/neurlang/dtrain/learning"
import "github.com/neurlang/dtrain/pairs"
import "github.com/neurlang/dtrain/parallel"
import "github.com/neurlang/dtrain/session"
import "github.com/neurlang/dtrain/weights"

func main() {
	fs := flag.NewFlagSet("dtrain_net", flag.ExitOnError)
	config := fs.String("c", "", "configuration file of key = value lines, command line flags win")
	addr := fs.String("addr", "", "socket address, e.g. tcp://127.0.0.1:60666")
	dial := fs.Bool("dial", false, "connect to addr instead of listening on it")
	worker := fs.Bool("worker", false, "run as downpour worker of dtrain_master")
	decoderConf := fs.String("decoder_conf", "", "lexicon of the decoder, src ||| tgt ||| F=v per line")
	inputWeights := fs.String("input_weights", "", "initial weights")
	learningRates := fs.String("learning_rates", "", "per-feature learning rates in weights format")
	output := fs.String("output", "", "weights written after every update and at shutdown")
	debugOutput := fs.String("debug_output", "", "append a JSON record of every update to this file")

	k := fs.Int("k", 100, "k-best list size")
	n := fs.Int("N", 4, "BLEU order")
	eta := fs.Float64("learning_rate", 1.0, "learning rate")
	gamma := fs.Float64("gamma", 0, "SVM regularization, 0 is the perceptron")
	margin := fs.Float64("margin", 0, "update correctly ranked pairs closer than this")
	l1 := fs.String("l1_reg", "none", "l1 regularization: none, naive, clip or cumul")
	l1Strength := fs.Float64("l1_reg_strength", 0, "l1 regularization strength")
	hiLo := fs.Float64("hi_lo", 0.1, "fraction of the top and bottom group of XYX sampling")
	threads := fs.Int("threads", parallel.Threads(), "goroutines scoring a k-best list")
	quiet := fs.Bool("q", false, "log warnings only")
	verbose := fs.Bool("v", false, "log debug messages")
	fs.Parse(os.Args[1:])

	if err := conf.LoadFile(fs, *config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr == "" || *decoderConf == "" {
		fmt.Fprintln(os.Stderr, "dtrain_net: -addr and -decoder_conf are required")
		fs.Usage()
		os.Exit(1)
	}
	log := conf.NewLogger(os.Stderr, *quiet, *verbose)

	reg, err := learning.ParseRegularization(*l1)
	if err != nil {
		usage(fs, err)
	}
	dict := weights.NewDictionary()
	h := learning.HyperParameters{
		Eta:        *eta,
		Gamma:      *gamma,
		Margin:     *margin,
		L1:         reg,
		L1Strength: *l1Strength,
		Rates:      learning.NewRates(dict),
	}
	if err := h.Validate(); err != nil {
		usage(fs, err)
	}
	if *k < 1 || *n < 1 {
		usage(fs, fmt.Errorf("k %d and N %d must be positive", *k, *n))
	}

	lex, err := decoder.LoadLexicon(*decoderConf, dict)
	if err != nil {
		log.Error("decoder", "err", err)
		os.Exit(1)
	}
	var init weights.Vector
	if *inputWeights != "" {
		if init, err = weights.ReadFile(*inputWeights, dict); err != nil {
			log.Error("input weights", "err", err)
			os.Exit(1)
		}
	}
	if *learningRates != "" {
		rates, err := weights.ReadFile(*learningRates, dict)
		if err != nil {
			log.Error("learning rates", "err", err)
			os.Exit(1)
		}
		h.Rates.Load(rates)
	}

	sampler := pairs.NewSampler(pairs.XYX, *hiLo, 0)
	if err := sampler.Validate(); err != nil {
		usage(fs, err)
	}
	sampler.MisrankedOnly = h.FasterPerceptron()
	s := session.New(session.Config{K: *k, N: *n, Output: *output, Threads: *threads},
		lex, dict, learning.New(h), sampler, init, log)
	if *debugOutput != "" {
		if err := s.SetLogger(*debugOutput); err != nil {
			log.Error("debug output", "err", err)
			os.Exit(1)
		}
	}

	var conn session.Conn
	if *dial {
		conn, err = session.Dial(*addr)
	} else {
		conn, err = session.Listen(*addr)
	}
	if err != nil {
		log.Error("socket", "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("dtrain_net", "cpu", parallel.CPU(), "addr", *addr, "worker", *worker, "k", *k, "N", *n,
		"learning_rate", *eta, "margin", *margin)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *worker {
		err = session.NewWorker(s).Run(ctx, conn)
	} else {
		err = s.Serve(ctx, conn)
	}
	if err != nil {
		log.Error("session", "err", err)
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet, err error) {
	fmt.Fprintln(os.Stderr, err)
	fs.Usage()
	os.Exit(1)
}
