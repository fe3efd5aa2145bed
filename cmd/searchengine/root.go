package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/crawler"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/export"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/workqueue"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

const (
	defaultIndexPath   = "index.json"
	defaultCountsPath  = "counts.json"
	defaultResultsPath = "results.json"
)

type options struct {
	configPath  string
	text        string
	html        string
	query       string
	index       string
	counts      string
	results     string
	exact       bool
	threads     int
	max         int
	metricsPort int
	logLevel    string
	sink        string
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(normalizeArgs(args, cmd.Flags()))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	return apperrors.ExitCode(err)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "searchengine",
		Short: "Build an inverted index from text files or a web crawl and search it",
		Long: `searchengine indexes every .txt/.text file under --text, or crawls up to --max
pages starting at --html, then resolves the query lines of --query against the
index. Giving --threads or --html switches to the multithreaded engine.

Output flags may be given without a value to use their default file name.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	f.StringVar(&opts.text, "text", "", "file or directory of text files to index")
	f.StringVar(&opts.html, "html", "", "seed URL to crawl (enables the multithreaded engine)")
	f.StringVar(&opts.query, "query", "", "file of query lines to search")
	f.BoolVar(&opts.exact, "exact", false, "exact instead of prefix search")
	f.StringVar(&opts.index, "index", defaultIndexPath, "write the inverted index")
	f.StringVar(&opts.counts, "counts", defaultCountsPath, "write the word count of every location")
	f.StringVar(&opts.results, "results", defaultResultsPath, "write the search results")
	f.IntVar(&opts.threads, "threads", config.DefaultThreads, "worker count (enables the multithreaded engine)")
	f.IntVar(&opts.max, "max", config.DefaultMaxURLs, "maximum number of unique URLs to crawl")
	f.IntVar(&opts.metricsPort, "metrics-port", 0, "serve Prometheus metrics on this port")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&opts.sink, "sink", "", "output sink: file, redis, kafka or postgres")

	f.Lookup("index").NoOptDefVal = defaultIndexPath
	f.Lookup("counts").NoOptDefVal = defaultCountsPath
	f.Lookup("results").NoOptDefVal = defaultResultsPath
	f.Lookup("threads").NoOptDefVal = strconv.Itoa(config.DefaultThreads)
	f.Lookup("max").NoOptDefVal = strconv.Itoa(config.DefaultMaxURLs)
	return cmd
}

// searchIndex is the part of either index flavour the driver needs.
type searchIndex interface {
	searcher.Index
	Snapshot() map[string]map[string][]int
	WordCounts() map[string]int
}

// engine is one configuration of the core. crawl and queue are nil for the
// single-threaded engine.
type engine struct {
	idx       searchIndex
	processor searcher.Processor
	build     func(root string) error
	crawl     func(ctx context.Context, seed string) error
	queue     *workqueue.Queue
}

func run(ctx context.Context, cmd *cobra.Command, opts *options) error {
	start := time.Now()
	flags := cmd.Flags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage, err.Error())
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("sink") {
		cfg.Output.Sink = opts.sink
	}
	if flags.Changed("metrics-port") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = opts.metricsPort
	}
	if flags.Changed("threads") {
		cfg.Engine.Threads = opts.threads
	}
	if flags.Changed("max") {
		cfg.Engine.MaxURLs = opts.max
	}
	cfg.Engine.Exact = cfg.Engine.Exact || opts.exact

	logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	ctx = logger.WithRunID(ctx, strconv.FormatInt(start.UnixNano(), 36))
	log := logger.FromContext(ctx).With("component", "driver")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	sink, err := export.NewSink(ctx, cfg.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Error("closing output sink", "error", err)
		}
	}()

	threaded := flags.Changed("threads") || flags.Changed("html")
	eng := newEngine(cfg, threaded, m)
	log.Info("engine ready", "threaded", threaded, "workers", cfg.Engine.Threads, "sink", cfg.Output.Sink)

	var errs []error
	fail := func(msg string, err error, attrs ...any) {
		log.Error(msg, append(attrs, "error", err)...)
		errs = append(errs, err)
	}

	if eng.crawl != nil && flags.Changed("html") {
		if err := eng.crawl(ctx, opts.html); err != nil {
			fail("crawl failed", err, "seed", opts.html)
		}
	}

	if flags.Changed("text") {
		if opts.text == "" {
			log.Warn("no input path given to --text")
		} else if err := eng.build(opts.text); err != nil {
			fail("building index failed", err, "path", opts.text)
		}
	}

	if flags.Changed("query") {
		if opts.query == "" {
			log.Warn("no query file given to --query")
		} else if err := eng.processor.SearchFile(opts.query, cfg.Engine.Exact); err != nil {
			fail("searching failed", err, "path", opts.query)
		}
	}

	if err := writeOutputs(ctx, cmd, opts, eng, sink); err != nil {
		fail("writing outputs failed", err)
	}

	if eng.queue != nil {
		eng.queue.Join()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Elapsed: %f seconds\n", time.Since(start).Seconds())
	return errors.Join(errs...)
}

func newEngine(cfg *config.Config, threaded bool, m *metrics.Metrics) *engine {
	stemmer := tokenizer.NewStemmer(cfg.Tokenizer.StemCacheSize)
	if !threaded {
		idx := index.NewWithStemmer(stemmer.Stem)
		return &engine{
			idx:       idx,
			processor: searcher.NewDirect(idx, m),
			build:     func(root string) error { return indexer.Build(root, idx, m) },
		}
	}

	threads := cfg.Engine.Threads
	if threads <= 0 {
		threads = 1
	}
	queue := workqueue.New(threads, workqueue.WithMetrics(m))
	idx := index.NewConcurrent(index.NewWithStemmer(stemmer.Stem), m)
	builder := indexer.NewParallelBuilder(queue, idx, m)
	fetcher := crawler.NewHTTPFetcher(cfg.Crawler)
	return &engine{
		idx:       idx,
		processor: searcher.NewQueued(idx, queue, m),
		build:     builder.Build,
		crawl: func(ctx context.Context, seed string) error {
			return crawler.New(cfg.Engine.MaxURLs, queue, idx, fetcher, m).Crawl(ctx, seed)
		},
		queue: queue,
	}
}

// writeOutputs renders and stores the requested documents concurrently.
func writeOutputs(ctx context.Context, cmd *cobra.Command, opts *options, eng *engine, sink export.Sink) error {
	flags := cmd.Flags()
	g, gctx := errgroup.WithContext(ctx)
	put := func(flag, name, fallback string, render func() ([]byte, error)) {
		if !flags.Changed(flag) {
			return
		}
		if name == "" {
			name = fallback
		}
		g.Go(func() error {
			data, err := render()
			if err != nil {
				return fmt.Errorf("rendering %s: %w", name, err)
			}
			if err := sink.Put(gctx, name, data); err != nil {
				return err
			}
			slog.Default().Debug("output written", "name", name, "bytes", len(data))
			return nil
		})
	}
	put("index", opts.index, defaultIndexPath, func() ([]byte, error) {
		return export.IndexJSON(eng.idx.Snapshot())
	})
	put("counts", opts.counts, defaultCountsPath, func() ([]byte, error) {
		return export.CountsJSON(eng.idx.WordCounts())
	})
	put("results", opts.results, defaultResultsPath, func() ([]byte, error) {
		return export.ResultsJSON(eng.processor.All())
	})
	return g.Wait()
}
