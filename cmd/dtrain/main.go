package main

import "context"
import "flag"
import "fmt"
import "os"
import "os/signal"
import "strings"

import "github.com/neurlang/dtrain/conf"
import "github.com/neurlang/dtrain/datasets"
import "github.com/neurlang/dtrain/decoder"
import "github.com/neurlang/dtrain/learning"
import "github.com/neurlang/dtrain/pairs"
import "github.com/neurlang/dtrain/parallel"
import "github.com/neurlang/dtrain/trainer"
import "github.com/neurlang/dtrain/weights"

func main() {
	fs := flag.NewFlagSet("dtrain", flag.ExitOnError)
	config := fs.String("c", "", "configuration file of key = value lines, command line flags win")
	bitext := fs.String("bitext", "", "training corpus, source ||| ref1 ||| ref2 per line (- is stdin)")
	decoderConf := fs.String("decoder_conf", "", "lexicon of the decoder, src ||| tgt ||| F=v per line")
	inputWeights := fs.String("input_weights", "", "initial weights")
	learningRates := fs.String("learning_rates", "", "per-feature learning rates in weights format")

	k := fs.Int("k", 100, "k-best list size")
	n := fs.Int("N", 4, "BLEU order")
	epochs := fs.Int("epochs", 10, "passes over the corpus")
	stopAfter := fs.Int("stop_after", 0, "read only this many sentences")
	noup := fs.Bool("noup", false, "do not update the weights")

	eta := fs.Float64("learning_rate", 1.0, "learning rate")
	gamma := fs.Float64("gamma", 0, "SVM regularization, 0 is the perceptron")
	margin := fs.Float64("margin", 0, "update correctly ranked pairs closer than this")
	l1 := fs.String("l1_reg", "none", "l1 regularization: none, naive, clip or cumul")
	l1Strength := fs.Float64("l1_reg_strength", 0, "l1 regularization strength")
	pclr := fs.String("pclr", "no", "per-coordinate learning rate: no, simple or adagrad")
	batch := fs.Bool("batch", false, "apply the updates once per epoch")
	repeat := fs.Int("repeat", 1, "passes over the pairs of a sentence")
	rescale := fs.Bool("rescale", false, "rescale feature vectors and weights to unit length")

	strategy := fs.String("pair_sampling", "XYX", "pair sampling: XYX, all, PRO or output_pairs")
	hiLo := fs.Float64("hi_lo", 0.1, "fraction of the top and bottom group of XYX sampling")
	threshold := fs.Float64("pair_threshold", 0, "minimum gold score gap of a pair")
	maxPairs := fs.Int("max_pairs", 0, "maximum pairs per sentence, 0 is no limit")
	faster := fs.String("faster_perceptron", "auto", "sample misranked pairs only: auto, true or false")
	seed := fs.Int64("seed", 0, "seed of PRO sampling")

	sel := fs.String("select_weights", "last", "final weights: last, best, avg or VOID")
	output := fs.String("output", "-", "final weights file (- is stdout, .gz compresses)")
	keep := fs.Bool("keep", false, "write weights.<epoch>.gz after every epoch")
	workDir := fs.String("work_dir", ".", "directory of the per-epoch weights")
	outputRanking := fs.String("output_ranking", "", "directory receiving the scored k-best lists")
	printWeights := fs.String("print_weights", "", "space separated feature names to log at the end")

	threads := fs.Int("threads", parallel.Threads(), "goroutines scoring a k-best list")
	cacheMB := fs.Int("score_cache_mb", 0, "gold score memo size in MB, 0 disables")
	quiet := fs.Bool("q", false, "log warnings only")
	verbose := fs.Bool("v", false, "log debug messages")
	fs.Parse(os.Args[1:])

	if err := conf.LoadFile(fs, *config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *bitext == "" || *decoderConf == "" {
		fmt.Fprintln(os.Stderr, "dtrain: -bitext and -decoder_conf are required")
		fs.Usage()
		os.Exit(1)
	}
	log := conf.NewLogger(os.Stderr, *quiet, *verbose)

	reg, err := learning.ParseRegularization(*l1)
	if err != nil {
		usage(fs, err)
	}
	coordinate, perCoordinate, err := learning.ParseCoordinate(*pclr)
	if err != nil {
		usage(fs, err)
	}
	st, err := pairs.ParseStrategy(*strategy)
	if err != nil {
		usage(fs, err)
	}
	selection, err := trainer.ParseSelection(*sel)
	if err != nil {
		usage(fs, err)
	}

	dict := weights.NewDictionary()
	h := learning.HyperParameters{
		Eta:        *eta,
		Gamma:      *gamma,
		Margin:     *margin,
		Coordinate: coordinate,
		L1:         reg,
		L1Strength: *l1Strength,
		Repeat:     *repeat,
		Rescale:    *rescale,
		Rates:      learning.NewRates(dict),
	}
	switch {
	case *batch:
		h.Mode = learning.Batch
	case perCoordinate:
		h.Mode = learning.PerCoordinate
	}
	if err := h.Validate(); err != nil {
		usage(fs, err)
	}

	sampler := pairs.NewSampler(st, *hiLo, *seed)
	sampler.Threshold = *threshold
	sampler.MaxPairs = *maxPairs
	if err := sampler.Validate(); err != nil {
		usage(fs, err)
	}
	switch *faster {
	case "true":
		sampler.MisrankedOnly = true
	case "auto":
		sampler.MisrankedOnly = h.FasterPerceptron()
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

	cfg := trainer.Config{
		K:               *k,
		N:               *n,
		Epochs:          *epochs,
		StopAfter:       *stopAfter,
		NoUpdate:        *noup,
		Keep:            *keep,
		Select:          selection,
		Output:          *output,
		WorkDir:         *workDir,
		OutputRanking:   *outputRanking,
		OutputPairs:     os.Stdout,
		Threads:         *threads,
		ScoreCacheBytes: *cacheMB << 20,
		PrintWeights:    strings.Fields(*printWeights),
	}
	if !*quiet {
		cfg.Progress = os.Stderr
	}
	if err := cfg.Validate(); err != nil {
		usage(fs, err)
	}
	log.Info("dtrain", "cpu", parallel.CPU(), "threads", *threads, "k", *k, "N", *n, "epochs", *epochs,
		"learning_rate", *eta, "gamma", *gamma, "margin", *margin, "l1_reg", *l1, "pclr", *pclr,
		"pair_sampling", st.String(), "hi_lo", *hiLo, "faster_perceptron", sampler.MisrankedOnly,
		"select_weights", selection.String())

	corpus, err := datasets.Open(*bitext)
	if err != nil {
		log.Error("corpus", "err", err)
		os.Exit(1)
	}
	defer corpus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	t := trainer.New(cfg, lex, dict, learning.New(h), sampler, init, log)
	if _, err := t.Run(ctx, corpus); err != nil {
		log.Error("training", "err", err)
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet, err error) {
	fmt.Fprintln(os.Stderr, err)
	fs.Usage()
	os.Exit(1)
}
