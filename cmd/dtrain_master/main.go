package main

import "context"
import "flag"
import "fmt"
import "os"
import "os/signal"
import "strings"

import "github.com/neurlang/dtrain/conf"
import "github.com/neurlang/dtrain/datasets"
import "github.com/neurlang/dtrain/session"
import "github.com/neurlang/dtrain/weights"

func main() {
	fs := flag.NewFlagSet("dtrain_master", flag.ExitOnError)
	config := fs.String("c", "", "configuration file of key = value lines, command line flags win")
	input := fs.String("input", "", "training corpus, source ||| ref1 ||| ref2 per line")
	workers := fs.String("workers", "", "comma separated addresses to listen on, one per worker")
	epochs := fs.Int("epochs", 10, "passes over the corpus")
	eta := fs.Float64("learning_rate", 1.0, "learning rate applied to the worker updates")
	output := fs.String("output", "-", "final weights file (- is stdout, .gz compresses)")
	quiet := fs.Bool("q", false, "log warnings only")
	verbose := fs.Bool("v", false, "log debug messages")
	fs.Parse(os.Args[1:])

	if err := conf.LoadFile(fs, *config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *input == "" || *workers == "" {
		fmt.Fprintln(os.Stderr, "dtrain_master: -input and -workers are required")
		fs.Usage()
		os.Exit(1)
	}
	log := conf.NewLogger(os.Stderr, *quiet, *verbose)

	var conns []session.Conn
	for _, addr := range strings.Split(*workers, ",") {
		conn, err := session.Listen(strings.TrimSpace(addr))
		if err != nil {
			log.Error("socket", "err", err)
			os.Exit(1)
		}
		defer conn.Close()
		log.Info("listening", "addr", addr)
		conns = append(conns, conn)
	}

	corpus, err := datasets.Open(*input)
	if err != nil {
		log.Error("corpus", "err", err)
		os.Exit(1)
	}
	defer corpus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	dict := weights.NewDictionary()
	w, err := session.NewMaster(conns, dict, *epochs, *eta, log).Run(ctx, corpus)
	if err != nil {
		log.Error("master", "err", err)
		os.Exit(1)
	}
	if err := weights.WriteFile(*output, w, dict); err != nil {
		log.Error("output", "err", err)
		os.Exit(1)
	}
}
