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

const serpAPIEndpoint = "https://serpapi.com/search"

// SerpApiSearchEngine queries Google through SerpAPI.
type SerpApiSearchEngine struct {
	client    *http.Client
	logger    *zap.Logger
	apiKey    string
	endpoint  string
	pageDelay time.Duration
}

type serpApiResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	SearchMetadata struct {
		Status string `json:"status"`
	} `json:"search_metadata"`
	Error string `json:"error"`
}

func NewSerpApiSearchEngine(client *http.Client, logger *zap.Logger, apiKey string) *SerpApiSearchEngine {
	if client == nil {
		client = &http.Client{}
	}
	return &SerpApiSearchEngine{
		client:    client,
		logger:    logger,
		apiKey:    apiKey,
		endpoint:  serpAPIEndpoint,
		pageDelay: apiPageDelay,
	}
}

func (s *SerpApiSearchEngine) Strategy() Strategy  { return StrategySerpAPI }
func (s *SerpApiSearchEngine) MaxConcurrency() int { return apiQueryConcurrency }

func (s *SerpApiSearchEngine) Execute(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	logger := crawler.ContextLogger(ctx, s.logger)
	results := make([]SearchResult, 0, maxResults)

	for start := 0; len(results) < maxResults; start += googlePageSize {
		num := min(googlePageSize, maxResults-len(results))

		params := url.Values{}
		params.Set("engine", "google")
		params.Set("q", query)
		params.Set("api_key", s.apiKey)
		params.Set("start", strconv.Itoa(start))
		params.Set("num", strconv.Itoa(num))

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := s.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			logger.Error("serpapi error",
				zap.String("query", query),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", body))
			break
		}

		var searchResp serpApiResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		for _, item := range searchResp.OrganicResults {
			if len(results) == maxResults {
				break
			}
			results = append(results, SearchResult{
				Title:   item.Title,
				URL:     item.Link,
				Content: item.Snippet,
			})
		}

		if err := retry.Sleep(ctx, s.pageDelay); err != nil {
			return results, nil
		}
		if len(searchResp.OrganicResults) < num {
			break
		}
	}

	return results, nil
}
