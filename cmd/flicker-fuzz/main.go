// Command flicker-fuzz drives a standalone local fuzzing loop: it loads a
// description, seeds or reopens a corpus, and runs a supervised pool of
// workers that generate, mutate, and execute programs against a harness
// binary, persisting anything that finds new coverage.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/profiler"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/nine-point-eight-p/flicker/cloudglue"
	"github.com/nine-point-eight-p/flicker/corpus"
	"github.com/nine-point-eight-p/flicker/descr"
	"github.com/nine-point-eight-p/flicker/internal/logger"
	"github.com/nine-point-eight-p/flicker/ipc"
	"github.com/nine-point-eight-p/flicker/metrics"
	"github.com/nine-point-eight-p/flicker/prog"
)

var (
	flagConfig  = flag.String("config", "flicker.yaml", "path to the worker config file")
	flagVerbose = flag.Int("v", 0, "log verbosity")
)

func main() {
	flag.Parse()
	logger.SetVerbosity(*flagVerbose)

	cfg, err := LoadConfig(*flagConfig)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cfg.Profiler.Enabled {
		if err := profiler.Start(profiler.Config{Service: "flicker-fuzz"}); err != nil {
			logger.Errorf("profiler: %v", err)
		}
	}

	meta, err := loadMetadata(cfg.DescriptionPath)
	if err != nil {
		logger.Fatalf("load description: %v", err)
	}

	c, err := corpus.Open(cfg.CorpusDir, meta)
	if err != nil {
		logger.Fatalf("open corpus: %v", err)
	}

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)

	var glue *cloudglue.Glue
	if cfg.Cloud.ProjectID != "" {
		glue, err = cloudglue.Open(ctx, cloudglue.Config{
			ProjectID:      cfg.Cloud.ProjectID,
			CoverageTopic:  cfg.Cloud.CoverageTopic,
			CounterDataset: cfg.Cloud.CounterDataset,
			CounterTable:   cfg.Cloud.CounterTable,
		})
		if err != nil {
			logger.Fatalf("cloud glue: %v", err)
		}
		defer glue.Close()
	}

	if cfg.HTTPAddr != "" {
		go serveHTTP(cfg.HTTPAddr)
	}

	executor := &ipc.SubprocessExecutor{
		Path:          cfg.HarnessPath,
		Timeout:       time.Duration(cfg.TimeoutMS) * time.Millisecond,
		CoverPath:     cfg.CoverPath,
		MemLimitBytes: cfg.MemLimitBytes,
		Neutralizer:   prog.NopNeutralizer{},
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.NumWorkers; i++ {
		workerID := i
		g.Go(func() error {
			return runWorker(ctx, workerID, meta, c, executor, reg, glue)
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Errorf("worker pool exited: %v", err)
	}
}

func loadMetadata(path string) (*prog.Metadata, error) {
	parsed, err := descr.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse description: %w", err)
	}
	meta, err := descr.BuildMetadata(parsed)
	if err != nil {
		return nil, fmt.Errorf("build metadata: %w", err)
	}
	return meta, nil
}

func runWorker(ctx context.Context, id int, meta *prog.Metadata, c *corpus.Corpus, exec ipc.Executor, reg *metrics.Registry, glue *cloudglue.Glue) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	gen := &prog.Generator{MaxCalls: 16}
	mutators := prog.Mutators()
	seen := make(map[uint32]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var p *prog.Prog
		if c.Count() > 0 && oneOf(rng, 3) {
			p = c.Random(rng)
			m := mutators[rng.Intn(len(mutators))]
			if result, err := m.Mutate(rng, meta, c, gen.MaxCalls, p); err != nil {
				logger.Errorf("worker %d: mutate: %v", id, err)
				continue
			} else if result == prog.Skipped {
				continue
			}
		} else {
			p = gen.Generate(rng, prog.NewContext(meta))
		}

		reg.ObserveProgramLength(len(p.Calls))
		reg.ProgramsGenerated.Inc()

		res, err := exec.Run(ctx, p)
		if err != nil {
			logger.Errorf("worker %d: exec: %v", id, err)
			continue
		}
		reg.ExecDuration.Observe(res.Duration.Seconds())

		if res.Kind == ipc.ExecCrash {
			reg.Crashes.Inc()
		}
		newEdges := 0
		for _, e := range res.Cover {
			if _, ok := seen[e]; !ok {
				seen[e] = struct{}{}
				newEdges++
			}
		}
		if newEdges > 0 {
			reg.ObserveCoverPerInput(newEdges)
			added, err := c.Add(p)
			if err != nil {
				logger.Errorf("worker %d: corpus add: %v", id, err)
			}
			if added {
				reg.CorpusSize.Set(float64(c.Count()))
				if glue != nil {
					_ = glue.PublishCoverage(ctx, cloudglue.CoverageEvent{
						Worker:      fmt.Sprintf("worker-%d", id),
						Fingerprint: p.Fingerprint(),
						NewEdges:    newEdges,
						ObservedAt:  time.Now(),
					})
				}
			}
		}
	}
}

func oneOf(rng *rand.Rand, n int) bool { return rng.Intn(n) == 0 }

func serveHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	logged := handlers.LoggingHandler(os.Stdout, mux)
	if err := http.ListenAndServe(addr, logged); err != nil {
		logger.Errorf("http server: %v", err)
	}
}
