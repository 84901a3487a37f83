package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"verynews/crawler"
	"verynews/pkg/retry"

	"go.uber.org/zap"
)

const (
	googleAPIEndpoint = "https://www.googleapis.com/customsearch/v1"
	googlePageSize    = 10
	apiPageDelay      = 200 * time.Millisecond
)

// GoogleAPIEngine queries the Google Custom Search JSON API.
type GoogleAPIEngine struct {
	client    *http.Client
	logger    *zap.Logger
	apiKey    string
	cx        string
	endpoint  string
	pageDelay time.Duration
}

type GoogleAPIOption func(*GoogleAPIEngine)

func WithGoogleEndpoint(endpoint string) GoogleAPIOption {
	return func(g *GoogleAPIEngine) { g.endpoint = endpoint }
}

func WithGooglePageDelay(d time.Duration) GoogleAPIOption {
	return func(g *GoogleAPIEngine) { g.pageDelay = d }
}

type googleAPIResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func NewGoogleAPIEngine(client *http.Client, logger *zap.Logger, apiKey, cx string, opts ...GoogleAPIOption) *GoogleAPIEngine {
	if client == nil {
		client = &http.Client{}
	}
	g := &GoogleAPIEngine{
		client:    client,
		logger:    logger,
		apiKey:    apiKey,
		cx:        cx,
		endpoint:  googleAPIEndpoint,
		pageDelay: apiPageDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleAPIEngine) Strategy() Strategy  { return StrategyGoogle }
func (g *GoogleAPIEngine) MaxConcurrency() int { return apiQueryConcurrency }

// Execute pages through the API until maxResults hits are collected or a page
// comes back short. A non-200 page ends the query with what was collected.
func (g *GoogleAPIEngine) Execute(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	logger := crawler.ContextLogger(ctx, g.logger)
	results := make([]SearchResult, 0, maxResults)

	for start := 1; len(results) < maxResults; start += googlePageSize {
		num := min(googlePageSize, maxResults-len(results))

		params := url.Values{}
		params.Set("q", query)
		params.Set("key", g.apiKey)
		params.Set("cx", g.cx)
		params.Set("start", strconv.Itoa(start))
		params.Set("num", strconv.Itoa(num))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			logger.Error("google search api error",
				zap.String("query", query),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", body))
			break
		}

		var page googleAPIResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		for _, item := range page.Items {
			if len(results) == maxResults {
				break
			}
			results = append(results, SearchResult{
				Title:   item.Title,
				URL:     item.Link,
				Content: item.Snippet,
			})
		}

		if err := retry.Sleep(ctx, g.pageDelay); err != nil {
			return results, nil
		}
		if len(page.Items) < num {
			break
		}
	}

	return results, nil
}
