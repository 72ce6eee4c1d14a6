package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/throttle"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/paginator"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitFailure)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := run(ctx, cfg, reg, os.Stdin, os.Stdout); err != nil {
		slog.Error("search server failed", "error", err)
		stop()
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, reg *prometheus.Registry, stdin io.Reader, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, fmt.Sprintf(":%d", cfg.Metrics.Port), reg); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	in := newInput(stdin)
	stopLine, _, err := in.readLine()
	if err != nil {
		return fmt.Errorf("reading stop words: %w", err)
	}
	stopWords, err := stopwords.New(slices.Concat(cfg.Search.StopWords, tokenizer.Words(stopLine)))
	if err != nil {
		return err
	}

	removal := execution.Sequential
	if cfg.Search.ParallelRemoval {
		removal = execution.Parallel
	}
	engine := indexer.NewEngine(stopWords,
		indexer.WithMetrics(m),
		indexer.WithRemovalPolicy(removal),
	)
	slog.Info("search server starting",
		"stop_words", stopWords.Len(),
		"removal_policy", removal,
		"request_window", cfg.Search.RequestWindow,
	)

	docs, err := in.readDocuments()
	if err != nil {
		return err
	}
	for id, doc := range docs {
		if err := engine.AddDocument(id, doc.Text, document.StatusActual, doc.Ratings); err != nil {
			slog.Warn("document skipped", "doc_id", id, "error", err)
		}
	}
	slog.Info("documents loaded", "count", engine.DocumentCount())

	if cfg.Search.RemoveDuplicates {
		duplicates := dedup.RemoveDuplicates(engine)
		for _, id := range duplicates {
			fmt.Fprintf(stdout, "Found duplicate document id %d\n", id)
		}
		m.DuplicatesRemovedTotal.Add(float64(len(duplicates)))
	}

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka, ingest.HandleMessage(engine))
		go func() {
			if err := consumer.Run(ctx); err != nil {
				slog.Error("ingest consumer error", "error", err)
			}
		}()
		slog.Info("ingest consumer started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.ConsumerGroup)
	}

	var finder throttle.Finder = executor.New(engine, executor.WithMetrics(m))
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer client.Close()
			finder = cache.New(client, finder, engine,
				cache.WithTTL(cfg.Redis.CacheTTL),
				cache.WithMetrics(m),
			)
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}
	queue := throttle.New(finder, cfg.Search.RequestWindow, throttle.WithMetrics(m))

	for ctx.Err() == nil {
		query, ok, err := in.readLine()
		if err != nil {
			return fmt.Errorf("reading query: %w", err)
		}
		if !ok {
			break
		}
		results, err := queue.AddFindRequest(query)
		if err != nil {
			fmt.Fprintf(stdout, "Error in query %q: %v\n", query, err)
			continue
		}
		printResults(stdout, query, results, cfg.Search.PageSize)
	}
	fmt.Fprintf(stdout, "Total empty requests: %d\n", queue.NoResultRequests())
	return nil
}

func printResults(w io.Writer, query string, results []ranker.Document, pageSize int) {
	fmt.Fprintf(w, "Results for request: %s\n", query)
	for _, page := range paginator.Paginate(results, pageSize) {
		for _, doc := range page {
			fmt.Fprintf(w, "{ document_id = %d, relevance = %g, rating = %d }\n", doc.ID, doc.Relevance, doc.Rating)
		}
		fmt.Fprintln(w, "Page break")
	}
}
