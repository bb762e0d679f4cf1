// Command epibench exercises the algebra and concurrency layers together:
// it builds a batch of random trigonometric monomials over a symbol set,
// computes all pairwise products on the worker pool and reports throughput.
// It doubles as a smoke test for the pool, the transform and the codec
// under realistic load.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbellamy/epicycle/cvector"
	"github.com/tbellamy/epicycle/internal/logging"
	"github.com/tbellamy/epicycle/kronecker"
	"github.com/tbellamy/epicycle/monomial"
	"github.com/tbellamy/epicycle/pool"
	"github.com/tbellamy/epicycle/settings"
	"github.com/tbellamy/epicycle/symbols"
)

type config struct {
	nVars    int
	nKeys    int
	maxMult  int64
	nThreads int
	seed     int64
	verbose  bool
}

func parseFlags() config {
	var cfg config
	flag.IntVar(&cfg.nVars, "vars", 4, "number of symbols in the reference set")
	flag.IntVar(&cfg.nKeys, "keys", 2000, "number of random monomials to generate")
	flag.Int64Var(&cfg.maxMult, "max-mult", 16, "maximum absolute multiplier value")
	flag.IntVar(&cfg.nThreads, "threads", settings.NumThreads(), "number of worker threads")
	flag.Int64Var(&cfg.seed, "seed", 42, "seed for the monomial generator")
	flag.BoolVar(&cfg.verbose, "v", false, "enable debug logging")
	setCustomUsage(flag.CommandLine)
	flag.Parse()
	return cfg
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "epibench:", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
	settings.SetLogger(logging.NewZerologAdapter(console))

	if err := settings.SetNumThreads(cfg.nThreads); err != nil {
		return err
	}
	if err := pool.Resize(cfg.nThreads); err != nil {
		return err
	}
	defer pool.Shutdown()

	names := make([]symbols.Symbol, cfg.nVars)
	for i := range names {
		names[i] = symbols.Symbol(fmt.Sprintf("x%d", i))
	}
	set := symbols.NewSet(names...)
	lim, err := kronecker.LimitFor(set.Len())
	if err != nil {
		return err
	}
	maxMult := cfg.maxMult
	for _, m := range lim.MinMax {
		if m < maxMult {
			maxMult = m
		}
	}

	tracer := otel.Tracer("epibench")
	ctx, span := tracer.Start(context.Background(), "benchmark")
	defer span.End()
	span.SetAttributes(
		attribute.Int("vars", cfg.nVars),
		attribute.Int("keys", cfg.nKeys),
		attribute.Int("threads", cfg.nThreads),
	)

	sp := spinner.New(spinner.CharSets[11], 200*time.Millisecond)
	sp.Suffix = " generating monomials..."
	sp.Start()

	keys, err := generateKeys(cfg, set, maxMult)
	if err != nil {
		sp.Stop()
		return err
	}

	sp.Suffix = " multiplying..."
	start := time.Now()
	products, checksum, err := multiplyAll(ctx, tracer, cfg, set, keys)
	sp.Stop()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	settings.Logger().Info("benchmark complete",
		logging.Int("products", products),
		logging.Uint64("checksum", checksum),
		logging.String("elapsed", elapsed.String()))
	fmt.Printf("%d products in %v (%.0f products/s)\n",
		products, elapsed, float64(products)/elapsed.Seconds())
	return nil
}

// generateKeys fills a concurrent vector with random canonical cosine and
// sine monomials. The generator is deterministic in the seed and the index,
// so runs are reproducible at any thread count.
func generateKeys(cfg config, set symbols.Set, maxMult int64) (*cvector.Vector[monomial.TrigMonomial], error) {
	return cvector.NewWithInit(cfg.nKeys, func(i int) (monomial.TrigMonomial, error) {
		rng := rand.New(rand.NewSource(cfg.seed + int64(i)))
		mults := make([]int64, set.Len())
		for j := range mults {
			mults[j] = rng.Int63n(2*maxMult+1) - maxMult
		}
		t, err := monomial.TrigFromMultipliers(mults)
		if err != nil {
			return monomial.TrigMonomial{}, err
		}
		t = t.WithFlavour(i%2 == 0)
		t, _, err = t.Canonicalize(set)
		return t, err
	})
}

// multiplyAll computes every pairwise product through the pool and folds
// the resulting codes into a checksum.
func multiplyAll(ctx context.Context, tracer trace.Tracer, cfg config, set symbols.Set,
	keys *cvector.Vector[monomial.TrigMonomial]) (int, uint64, error) {
	_, span := tracer.Start(ctx, "multiply")
	defer span.End()

	type pair struct{ a, b monomial.TrigMonomial }
	n := keys.Len()
	pairs := make([]pair, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			pairs = append(pairs, pair{keys.At(i), keys.At(j)})
		}
	}
	nThreads, err := pool.UseThreads(len(pairs), settings.MinWorkPerThread())
	if err != nil {
		return 0, 0, err
	}
	settings.Logger().Debug("partitioned work",
		logging.Int("pairs", len(pairs)), logging.Int("threads", nThreads))

	out := make([]uint64, len(pairs))
	err = pool.Transform(nThreads, pairs, out, func(p pair) (uint64, error) {
		res, err := monomial.MulTrig(p.a, p.b, set)
		if err != nil {
			return 0, err
		}
		return res.Plus.Hash() ^ res.Minus.Hash(), nil
	})
	if err != nil {
		return 0, 0, err
	}
	var checksum uint64
	for _, h := range out {
		checksum ^= h
	}
	return 2 * len(pairs), checksum, nil
}
