package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"verynews/pkg/metrics"
	"verynews/pkg/retry"

	"go.uber.org/zap"
)

const TimeoutPlaceholder = "[Content fetch timeout, skipped]"

// Fetcher downloads a page or document and turns it into plain text. It never
// fails: problems are reported inline as bracketed placeholders.
type Fetcher struct {
	httpClient *http.Client
	logger     *zap.Logger
	config     *FetcherConfig
	html       *HTMLExtractor
	pdf        *PDFExtractor
}

func NewFetcher(httpClient *http.Client, logger *zap.Logger, config *FetcherConfig) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Fetcher{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
		html:       NewHTMLExtractor(config.HTMLMode, logger),
		pdf:        NewPDFExtractor(),
	}
}

// Fetch returns the extracted text of pageURL or a placeholder describing why
// there is none. Network errors and timeouts are retried.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) string {
	logger := ContextLogger(ctx, f.logger)
	start := time.Now()
	defer func() {
		metrics.ContentFetchDuration.Observe(time.Since(start).Seconds())
	}()

	if _, err := ValidateFetchURL(pageURL); err != nil {
		metrics.ContentFetches.WithLabelValues("failed").Inc()
		logger.Warn("skipping content fetch", zap.String("url", pageURL), zap.Error(err))
		return fmt.Sprintf("[Content fetch failed: %v]", err)
	}

	text, err := retry.Do(ctx, f.config.Retry, func(ctx context.Context, attempt int) (string, error) {
		text, err := f.fetchOnce(ctx, pageURL)
		if err != nil {
			logger.Debug("content fetch attempt failed",
				zap.String("url", pageURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return text, err
	})
	if err != nil {
		if isTimeout(err) {
			metrics.ContentFetches.WithLabelValues("timeout").Inc()
			logger.Warn("content fetch timed out", zap.String("url", pageURL))
			return TimeoutPlaceholder
		}
		metrics.ContentFetches.WithLabelValues("failed").Inc()
		logger.Warn("failed to fetch content", zap.String("url", pageURL), zap.Error(err))
		return fmt.Sprintf("[Content fetch failed: %v]", err)
	}
	return text
}

// fetchOnce performs a single attempt. A returned error means the attempt may
// be retried; everything else is already a final text or placeholder.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", RandomUserAgent())
	req.Header.Set("Accept", f.config.Accept)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ContentFetches.WithLabelValues("http_error").Inc()
		return fmt.Sprintf("[HTTP error: %d]", resp.StatusCode), nil
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "application/pdf") || strings.HasSuffix(strings.ToLower(pageURL), ".pdf"):
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxPDFBytes))
		if err != nil {
			return "", err
		}
		metrics.ContentFetches.WithLabelValues("pdf").Inc()
		text, err := f.pdf.ExtractText(body, f.config.MaxPDFPages)
		if err != nil {
			return fmt.Sprintf("[PDF content extraction failed: %v]", err), nil
		}
		return text, nil

	case strings.Contains(contentType, "text/html"):
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		metrics.ContentFetches.WithLabelValues("html").Inc()
		decoded, err := DecodeHTML(body, contentType)
		if err != nil {
			return fmt.Sprintf("[Could not decode content: %v]", err), nil
		}
		return f.html.ExtractText(decoded, pageURL), nil

	default:
		metrics.ContentFetches.WithLabelValues("unsupported").Inc()
		return fmt.Sprintf("[Unsupported content type: %s]", contentType), nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
