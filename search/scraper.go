package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"verynews/crawler"
	"verynews/pkg/retry"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	googleSearchURL = "https://www.google.com/search"
	consentCookies  = "CONSENT=PENDING+987; SOCS=CAESHAgBEhIaAB"
	scrapeWorkers   = 5
)

// GoogleScraper reads Google result pages directly when no API credentials
// are configured. Requests are blocking, so they run on a small worker pool.
type GoogleScraper struct {
	httpClient  *http.Client
	logger      *zap.Logger
	baseURL     string
	pageDelay   time.Duration
	startJitter retry.Policy
	timeout     time.Duration
	workers     *semaphore.Weighted
}

type ScraperOption func(*GoogleScraper)

func WithScraperBaseURL(u string) ScraperOption {
	return func(s *GoogleScraper) { s.baseURL = u }
}

// WithScraperDelays overrides the pause between pages and the random pause
// before the first page of each query.
func WithScraperDelays(page, jitterMin, jitterMax time.Duration) ScraperOption {
	return func(s *GoogleScraper) {
		s.pageDelay = page
		s.startJitter.JitterMin = jitterMin
		s.startJitter.JitterMax = jitterMax
	}
}

func NewGoogleScraper(httpClient *http.Client, logger *zap.Logger, opts ...ScraperOption) *GoogleScraper {
	// colly mutates the client it is given, so it gets its own.
	client := &http.Client{}
	if httpClient != nil {
		client.Transport = httpClient.Transport
	}
	s := &GoogleScraper{
		httpClient: client,
		logger:     logger,
		baseURL:    googleSearchURL,
		pageDelay:  time.Second,
		startJitter: retry.Policy{
			JitterMin: 500 * time.Millisecond,
			JitterMax: 2 * time.Second,
		},
		timeout: 30 * time.Second,
		workers: semaphore.NewWeighted(scrapeWorkers),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GoogleScraper) Strategy() Strategy  { return StrategyScrape }
func (s *GoogleScraper) MaxConcurrency() int { return scrapeQueryConcurrency }

// Execute never returns an error for a failed page: whatever was collected
// before the failure is returned.
func (s *GoogleScraper) Execute(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if err := retry.Sleep(ctx, s.startJitter.Jitter()); err != nil {
		return nil, err
	}
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.workers.Release(1)

	return s.scrape(ctx, query, maxResults), nil
}

func (s *GoogleScraper) scrape(ctx context.Context, query string, maxResults int) []SearchResult {
	logger := crawler.ContextLogger(ctx, s.logger)

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetClient(s.httpClient)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", crawler.RandomUserAgent())
		r.Headers.Set("Accept", "*/*")
		r.Headers.Set("Cookie", consentCookies)
	})

	results := make([]SearchResult, 0, maxResults)
	seen := make(map[string]struct{})
	fresh := 0

	c.OnHTML("div.ezO2md", func(e *colly.HTMLElement) {
		if len(results) >= maxResults {
			return
		}
		link := e.DOM.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		title := link.Find("span.CVA68e").First()
		snippet := e.DOM.Find("span.FrIlee").First()
		if title.Length() == 0 || snippet.Length() == 0 {
			return
		}

		resultURL := unwrapResultLink(href)
		if _, dup := seen[resultURL]; dup {
			return
		}
		seen[resultURL] = struct{}{}
		fresh++

		results = append(results, SearchResult{
			Title:   title.Text(),
			URL:     resultURL,
			Content: snippet.Text(),
		})
	})

	for start := 0; len(results) < maxResults; start += googlePageSize {
		fresh = 0

		params := url.Values{}
		params.Set("q", query)
		params.Set("num", strconv.Itoa(maxResults+2))
		params.Set("hl", "en")
		params.Set("start", strconv.Itoa(start))
		params.Set("safe", "active")

		if err := c.Visit(s.baseURL + "?" + params.Encode()); err != nil {
			logger.Warn("google result page failed",
				zap.String("query", query),
				zap.Int("start", start),
				zap.Error(err))
			break
		}
		if fresh == 0 || len(results) >= maxResults {
			break
		}
		if err := retry.Sleep(ctx, s.pageDelay); err != nil {
			break
		}
	}

	logger.Debug("google scrape finished",
		zap.String("query", query),
		zap.Int("results", len(results)))
	return results
}

// unwrapResultLink turns a "/url?q=<target>&sa=..." redirect into its target.
func unwrapResultLink(href string) string {
	href, _, _ = strings.Cut(href, "&")
	href = strings.ReplaceAll(href, "/url?q=", "")
	if decoded, err := url.PathUnescape(href); err == nil {
		return decoded
	}
	return href
}
