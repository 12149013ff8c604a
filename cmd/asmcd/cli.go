package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"asmc/engine"
	"asmc/engine/config"
	"asmc/gossip"
	"asmc/models"
	"asmc/trace"
)

// commonFlags is the shared flag set every subcommand below accepts,
// the same repeated-per-subcommand pattern cli.go uses for send/
// balance/generate-key rather than one global flag.FlagSet.
type commonFlags struct {
	particles    int
	buffer       int
	seed         int64
	verbose      bool
	traceDir     string
	gossipListen int
	gossipPeer   string
}

func bindCommon(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.IntVar(&c.particles, "particles", config.NumParticles, "target number of completed particles")
	fs.IntVar(&c.buffer, "buffer", config.BufferSize, "scheduler buffer size (rho)")
	fs.Int64Var(&c.seed, "seed", 1, "master RNG seed")
	fs.BoolVar(&c.verbose, "verbose", false, "log scheduler-level factor/exit events")
	fs.StringVar(&c.traceDir, "trace-dir", "", "persist completed particles to a badger trace store at this path")
	fs.IntVar(&c.gossipListen, "gossip-listen", 0, "libp2p progress reporter listen port (0 disables)")
	fs.StringVar(&c.gossipPeer, "gossip-peer", "", "multiaddr of a peer progress reporter to dial")
	return c
}

func (c *commonFlags) options() engine.Options {
	return engine.Options{
		NumParticles: c.particles,
		BufferSize:   c.buffer,
		Seed:         c.seed,
		Verbose:      c.verbose,
	}
}

func runCLI(subcommand string, args []string) {
	switch subcommand {
	case "bernoulli":
		runBernoulli(args)
	case "observe":
		runObserve(args)
	case "allkill":
		runAllKill(args)
	case "linreg":
		runLinReg(args)
	case "factorchain":
		runFactorChain(args)
	case "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "asmcd: unknown subcommand %q\n\n", subcommand)
		printHelp()
		os.Exit(1)
	}
}

func runBernoulli(args []string) {
	fs := flag.NewFlagSet("bernoulli", flag.ExitOnError)
	c := bindCommon(fs)
	p := fs.Float64("p", 0.5, "Bernoulli success probability")
	fs.Parse(args)

	runAndReport("bernoulli", c, models.CoinFlip(*p))
}

func runObserve(args []string) {
	fs := flag.NewFlagSet("observe", flag.ExitOnError)
	c := bindCommon(fs)
	obs := fs.Float64("obs", 1.0, "observed value under Normal(x, 1)")
	fs.Parse(args)

	runAndReport("observe", c, models.SingleObservation(*obs))
}

func runAllKill(args []string) {
	fs := flag.NewFlagSet("allkill", flag.ExitOnError)
	c := bindCommon(fs)
	fs.Parse(args)

	runAndReport("allkill", c, models.AllKill())
}

func runLinReg(args []string) {
	fs := flag.NewFlagSet("linreg", flag.ExitOnError)
	c := bindCommon(fs)
	noise := fs.Float64("noise", 0.1, "observation noise standard deviation")
	fs.Parse(args)

	xs := []float64{1, 2}
	ys := []float64{2, 4}
	runAndReport("linreg", c, models.LinearRegression(xs, ys, *noise))
}

func runFactorChain(args []string) {
	fs := flag.NewFlagSet("factorchain", flag.ExitOnError)
	c := bindCommon(fs)
	n := fs.Int("factors", 5, "number of chained zero-weight factors")
	fs.Parse(args)

	runAndReport("factorchain", c, models.FactorChain(*n))
}

// runAndReport drives one inference run to completion, optionally
// persisting every completed particle to a trace store and/or
// publishing a final progress snapshot to a gossip reporter, then
// prints the resulting empirical marginal to stdout.
func runAndReport(runID string, c *commonFlags, newModel func() engine.Cont) {
	ctx := context.Background()

	var reporter *gossip.Reporter
	if c.gossipListen > 0 {
		r, err := gossip.NewReporter(ctx, c.gossipListen, runID)
		if err != nil {
			log.Fatalf("asmcd: failed to start gossip reporter: %v", err)
		}
		defer r.Close()
		if c.gossipPeer != "" {
			if err := r.Dial(ctx, c.gossipPeer); err != nil {
				log.Printf("[GOSSIP] failed to dial peer %s: %v", c.gossipPeer, err)
			}
		}
		reporter = r
	}

	d, err := engine.Run(newModel, c.options())
	if err != nil {
		log.Fatalf("asmcd: run failed: %v", err)
	}

	if c.traceDir != "" {
		store, err := trace.Open(c.traceDir)
		if err != nil {
			log.Fatalf("asmcd: failed to open trace store: %v", err)
		}
		defer store.Close()
		for _, rec := range d.Completed() {
			if err := store.Put(trace.FromCompleted(runID, rec)); err != nil {
				log.Printf("[TRACE] failed to persist record seq=%d: %v", rec.Seq, err)
			}
		}
	}

	reporter.Publish(gossip.Snapshot{
		Completed:             len(d.Completed()),
		NumParticles:          c.particles,
		NormalizationConstant: d.NormalizationConstant,
	})

	fmt.Printf("run=%s normalizationConstant=%.6f\n", runID, d.NormalizationConstant)
	for _, b := range d.Buckets() {
		fmt.Printf("  value=%v count=%d mass=%.6f\n", b.Value, b.Count, b.Mass)
	}
}
