package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"verynews/crawler"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserEngine describes a search page driven through headless Chrome.
type BrowserEngine struct {
	Name           string
	URLTemplate    string
	NextSelector   string
	ResultSelector string
	TitleSelector  string
	SnippetSelect  string
}

var duckDuckGo = BrowserEngine{
	Name:           "DuckDuckGo",
	URLTemplate:    "https://duckduckgo.com/?q=%s",
	NextSelector:   `button[id="more-results"]`,
	ResultSelector: `article[data-testid="result"]`,
	TitleSelector:  `a[data-testid="result-title-a"]`,
	SnippetSelect:  `div[data-result="snippet"]`,
}

// Browser searches through a real browser. It is slow and only used when
// explicitly selected.
type Browser struct {
	logger          *zap.Logger
	engine          BrowserEngine
	chromedpOptions []chromedp.ExecAllocatorOption
	pageTimeout     time.Duration
	maxPages        int
}

type browserHit struct {
	Href    string `json:"href"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

func NewBrowser(logger *zap.Logger, proxyURL string) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		// Stealth options
		chromedp.Flag("accept-language", "en-US,en;q=0.9"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-extensions", ""),
	)
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}
	return &Browser{
		logger:          logger,
		engine:          duckDuckGo,
		chromedpOptions: opts,
		pageTimeout:     90 * time.Second,
		maxPages:        3,
	}
}

func (b *Browser) Strategy() Strategy  { return StrategyBrowser }
func (b *Browser) MaxConcurrency() int { return scrapeQueryConcurrency }

func (b *Browser) Execute(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	logger := crawler.ContextLogger(ctx, b.logger)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.chromedpOptions...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, b.pageTimeout)
	defer timeoutCancel()

	searchURL := fmt.Sprintf(b.engine.URLTemplate, url.QueryEscape(query))
	logger.Info("Navigating to search",
		zap.String("url", searchURL),
		zap.String("engine", b.engine.Name))

	err := chromedp.Run(taskCtx,
		chromedp.Navigate(searchURL),
		chromedp.WaitVisible("body"),
		chromedp.Evaluate(`
			Object.defineProperty(navigator, 'webdriver', {
				get: () => undefined,
			});
			window.chrome = { runtime: {} };
		`, nil),
		chromedp.WaitReady(b.engine.ResultSelector),
	)
	if err != nil {
		var title string
		_ = chromedp.Run(taskCtx, chromedp.Title(&title))
		logger.Error("Failed to navigate and setup page",
			zap.String("title", title),
			zap.Error(err))
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	var hits []browserHit
	for page := 0; page < b.maxPages; page++ {
		if err := chromedp.Run(taskCtx, chromedp.Evaluate(b.extractScript(), &hits)); err != nil {
			return nil, fmt.Errorf("link extraction failed: %w", err)
		}
		if len(hits) >= maxResults {
			break
		}
		// More results are appended to the same page.
		err := chromedp.Run(taskCtx,
			chromedp.Click(b.engine.NextSelector, chromedp.NodeVisible),
			chromedp.Sleep(time.Second),
		)
		if err != nil {
			logger.Debug("no more results", zap.Error(err))
			break
		}
	}

	results := collectHits(hits, maxResults)
	logger.Info("Successfully extracted links",
		zap.Int("total_links", len(hits)),
		zap.Int("results", len(results)))
	return results, nil
}

func (b *Browser) extractScript() string {
	return fmt.Sprintf(`
		Array.from(document.querySelectorAll('%s')).map(r => {
			const a = r.querySelector('%s');
			const s = r.querySelector('%s');
			return {
				href: a ? a.href : '',
				title: a ? a.textContent.trim() : '',
				snippet: s ? s.textContent.trim() : ''
			};
		})
	`, b.engine.ResultSelector, b.engine.TitleSelector, b.engine.SnippetSelect)
}

// collectHits drops non-https links, empty titles and repeated URLs.
func collectHits(hits []browserHit, maxResults int) []SearchResult {
	results := make([]SearchResult, 0, min(len(hits), maxResults))
	seen := make(map[string]struct{})
	for _, h := range hits {
		if len(results) == maxResults {
			break
		}
		if !strings.HasPrefix(h.Href, "https") || h.Title == "" {
			continue
		}
		if _, dup := seen[h.Href]; dup {
			continue
		}
		seen[h.Href] = struct{}{}
		results = append(results, SearchResult{
			Title:   h.Title,
			URL:     h.Href,
			Content: h.Snippet,
		})
	}
	return results
}
