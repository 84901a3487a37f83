package search

import (
	"context"
	"errors"
)

// SearchResult is a single hit returned by a search strategy. RawContent is
// only filled when the orchestrator is asked to fetch page content.
type SearchResult struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Content    string   `json:"content"`
	Score      *float64 `json:"score"`
	RawContent *string  `json:"raw_content"`
}

// QueryResponse holds the results of one query. Query is the text actually
// sent to the provider, site filter included.
type QueryResponse struct {
	Query             string         `json:"query"`
	FollowUpQuestions []string       `json:"follow_up_questions"`
	Answer            *string        `json:"answer"`
	Images            []string       `json:"images"`
	Results           []SearchResult `json:"results"`
}

// Batch keeps one QueryResponse per input query, in input order.
type Batch []QueryResponse

// Strategy names a search backend.
type Strategy string

const (
	StrategyAuto    Strategy = "auto"
	StrategyGoogle  Strategy = "google"
	StrategySerpAPI Strategy = "serpapi"
	StrategyScrape  Strategy = "scrape"
	StrategyBrowser Strategy = "browser"
)

var ErrUnknownStrategy = errors.New("unknown search strategy")

// Executor runs a single query against one backend.
type Executor interface {
	Execute(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
	Strategy() Strategy
	// MaxConcurrency bounds how many queries may run against the backend at once.
	MaxConcurrency() int
}

// ContentFetcher turns a URL into text. Implementations never fail and report
// problems as placeholder text instead.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) string
}

const (
	apiQueryConcurrency    = 5
	scrapeQueryConcurrency = 2
	fetchConcurrency       = 3
)
