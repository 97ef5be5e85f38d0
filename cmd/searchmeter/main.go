package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/searchmeter/searchmeter/internal/config"
	"github.com/searchmeter/searchmeter/internal/executor"
	"github.com/searchmeter/searchmeter/internal/output"
	"github.com/searchmeter/searchmeter/internal/querysource"
	"github.com/searchmeter/searchmeter/internal/solr"
	"github.com/searchmeter/searchmeter/internal/statistic"
	"github.com/searchmeter/searchmeter/internal/threshold"
	"github.com/searchmeter/searchmeter/internal/tracing"
)

const (
	progressInterval = time.Second
	baseRetryDelay   = 100 * time.Millisecond
	maxRetryDelay    = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	source, err := loadSource(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	invoker, err := buildInvoker(cfg, tracer)
	if err != nil {
		return err
	}

	collector := statistic.NewCollector()

	ex := executor.New(executor.Options{
		Source:            source,
		Invoker:           invoker,
		QueriesPerMinute:  cfg.QueriesPerMinute,
		QueryType:         cfg.QueryType,
		ExtraParameters:   cfg.ExtraParameters,
		FilterProbability: cfg.FilterProbability,
		UseFacets:         cfg.UseFacets,
		ArrivalModel:      cfg.Arrival.Model,
		Logger:            logger.WithField("component", "executor"),
	})

	if err := ex.AddObserver(collector); err != nil {
		return err
	}
	if cfg.LogErrors {
		if err := ex.AddObserver(statistic.NewErrorLog(logger.WithField("component", "errorlog"))); err != nil {
			return err
		}
	}

	if err := ex.Prepare(); err != nil {
		return err
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
		defer progress.Stop()
	}

	runID := output.NewRunID()
	startedAt := time.Now()
	logger.WithFields(logrus.Fields{
		"run_id": runID,
		"url":    cfg.SearchURL,
		"qpm":    cfg.QueriesPerMinute,
	}).Info("starting test")

	collector.Start()
	if err := ex.Start(); err != nil {
		return err
	}

	waitForEnd(ctx, cfg.Duration)

	if err := ex.Stop(); err != nil {
		return err
	}
	stats := collector.Stats(collector.Elapsed())

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, stats); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, stats)
	}

	if cfg.HistoryFile != "" {
		entry := output.HistoryEntry{
			RunID:     runID,
			StartedAt: startedAt,
			SearchURL: cfg.SearchURL,
			TargetQPM: cfg.QueriesPerMinute,
			Stats:     stats,
		}
		if err := output.AppendHistory(cfg.HistoryFile, entry); err != nil {
			logger.WithError(err).Warn("history append failed")
		}
	}

	if len(thresholds) > 0 {
		results := threshold.NewEvaluator(thresholds).Evaluate(stats)
		failed := 0
		for _, result := range results {
			fmt.Fprintln(os.Stdout, result.Message)
			if !result.Pass {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d threshold(s) failed", failed)
		}
	}

	return nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.JSONOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func loadSource(cfg *config.Config) (*querysource.Source, error) {
	if cfg.PoolsFile != "" {
		return querysource.LoadYAML(cfg.PoolsFile)
	}
	return querysource.LoadFiles(cfg.QueriesFile, cfg.FilterQueriesFile, cfg.FacetFieldsFile)
}

func buildInvoker(cfg *config.Config, tracer *tracing.Provider) (solr.Invoker, error) {
	client, err := solr.NewClient(cfg.SearchURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if tracer.ShouldPropagate() {
		client.SetHeaderInjector(tracing.InjectHTTPHeaders)
	}

	var invoker solr.Invoker = client
	if cfg.Tracing.Enabled() {
		invoker = &tracedInvoker{inner: invoker, tracer: tracer}
	}
	if cfg.Retries > 0 {
		invoker = solr.WithRetry(invoker, newRetryPolicy(cfg.Retries))
	}
	return invoker, nil
}

func newRetryPolicy(retries int) solr.RetryPolicy {
	return solr.RetryPolicy{
		MaxAttempts: retries + 1,
		DelayFunc: func(attempt int, _ error) time.Duration {
			delay := baseRetryDelay << (attempt - 1)
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			return delay
		},
		ShouldRetry: func(err error) bool {
			// Context cancellation means the test is winding down.
			return !errors.Is(err, context.Canceled)
		},
	}
}

func waitForEnd(ctx context.Context, duration time.Duration) {
	if duration <= 0 {
		<-ctx.Done()
		return
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// tracedInvoker wraps an Invoker with a client span per operation.
type tracedInvoker struct {
	inner  solr.Invoker
	tracer *tracing.Provider
}

func (t *tracedInvoker) Execute(ctx context.Context, query solr.Query) (*solr.QueryResponse, error) {
	ctx, span := tracing.StartQuerySpan(ctx, t.tracer.Tracer(), query.QueryType)
	resp, err := t.inner.Execute(ctx, query)
	tracing.EndSpan(span, err)
	return resp, err
}
