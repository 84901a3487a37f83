package search

import (
	"context"
	"fmt"
	"strings"

	"verynews/crawler"
	"verynews/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const DefaultMaxResults = 5

type Options struct {
	MaxResults        int
	IncludeRawContent bool
	TrustedSites      []string
}

// Orchestrator fans a list of queries out to an Executor and optionally
// fetches the content behind every result.
type Orchestrator struct {
	executor Executor
	fetcher  ContentFetcher
	logger   *zap.Logger
}

func NewOrchestrator(executor Executor, fetcher ContentFetcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		executor: executor,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// SiteFilter renders trusted domains as "site:a OR site:b".
func SiteFilter(sites []string) string {
	parts := make([]string, 0, len(sites))
	for _, s := range sites {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, "site:"+s)
		}
	}
	return strings.Join(parts, " OR ")
}

// Search runs every query and returns one response per query in input order.
// It never fails: a query that errors yields an empty result list.
func (o *Orchestrator) Search(ctx context.Context, queries []string, opts Options) Batch {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	filter := SiteFilter(opts.TrustedSites)

	batch := make(Batch, len(queries))
	sem := semaphore.NewWeighted(int64(max(1, o.executor.MaxConcurrency())))
	fetchSem := semaphore.NewWeighted(fetchConcurrency)

	var g errgroup.Group
	for i, q := range queries {
		query := q
		if filter != "" {
			query = q + " " + filter
		}
		g.Go(func() error {
			batch[i] = o.searchOne(ctx, sem, fetchSem, query, opts)
			return nil
		})
	}
	_ = g.Wait()

	return batch
}

func (o *Orchestrator) searchOne(ctx context.Context, sem, fetchSem *semaphore.Weighted, query string, opts Options) QueryResponse {
	logger := crawler.ContextLogger(ctx, o.logger)
	strategy := string(o.executor.Strategy())
	resp := QueryResponse{
		Query:   query,
		Images:  []string{},
		Results: []SearchResult{},
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		logger.Warn("search cancelled before start", zap.String("query", query), zap.Error(err))
		metrics.SearchQueries.WithLabelValues(strategy, "cancelled").Inc()
		return resp
	}
	results, err := o.executor.Execute(ctx, query, opts.MaxResults)
	sem.Release(1)
	if err != nil {
		logger.Error("search query failed",
			zap.String("query", query),
			zap.String("strategy", strategy),
			zap.Error(err))
		metrics.SearchQueries.WithLabelValues(strategy, "error").Inc()
		return resp
	}
	metrics.SearchQueries.WithLabelValues(strategy, "ok").Inc()
	metrics.SearchResults.WithLabelValues(strategy).Add(float64(len(results)))

	if opts.IncludeRawContent && o.fetcher != nil {
		o.fetchContent(ctx, fetchSem, results)
	}
	if results != nil {
		resp.Results = results
	}
	return resp
}

// fetchContent fills RawContent of every result in place. sem is shared by
// the whole batch, so at most fetchConcurrency fetches run at once.
func (o *Orchestrator) fetchContent(ctx context.Context, sem *semaphore.Weighted, results []SearchResult) {
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			var text string
			if err := sem.Acquire(ctx, 1); err != nil {
				text = fmt.Sprintf("[Content fetch failed: %v]", err)
			} else {
				text = o.fetcher.Fetch(ctx, results[i].URL)
				sem.Release(1)
			}
			results[i].RawContent = &text
			return nil
		})
	}
	_ = g.Wait()
}
