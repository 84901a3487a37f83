package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resultBlock(target, title, snippet string) string {
	return fmt.Sprintf(`<div class="ezO2md"><a href="/url?q=%s&amp;sa=U&amp;ved=x"><span class="CVA68e">%s</span></a><span class="FrIlee">%s</span></div>`,
		url.PathEscape(target), title, snippet)
}

type scrapeServer struct {
	mu      sync.Mutex
	starts  []int
	cookies []string
	agents  []string
	pages   map[int]string
}

func (s *scrapeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	s.mu.Lock()
	s.starts = append(s.starts, start)
	s.cookies = append(s.cookies, r.Header.Get("Cookie"))
	s.agents = append(s.agents, r.Header.Get("User-Agent"))
	body, ok := s.pages[start]
	s.mu.Unlock()

	if !ok {
		body = ""
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<html><body>%s</body></html>", body)
}

func newTestScraper(srv *httptest.Server) *GoogleScraper {
	return NewGoogleScraper(srv.Client(), zap.NewNop(),
		WithScraperBaseURL(srv.URL+"/search"),
		WithScraperDelays(0, 0, 0))
}

func TestScraper_ParsesAndPaginates(t *testing.T) {
	ss := &scrapeServer{pages: map[int]string{
		0: resultBlock("https://a.example/x y", "A", "about a") +
			resultBlock("https://b.example/", "B", "about b") +
			// missing snippet, skipped
			`<div class="ezO2md"><a href="/url?q=https://c.example"><span class="CVA68e">C</span></a></div>`,
		10: resultBlock("https://a.example/x y", "A dup", "dup") +
			resultBlock("https://d.example/", "D", "about d"),
	}}
	srv := httptest.NewServer(ss)
	defer srv.Close()

	results, err := newTestScraper(srv).Execute(context.Background(), "news check", 5)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, SearchResult{Title: "A", URL: "https://a.example/x y", Content: "about a"}, results[0])
	assert.Equal(t, "https://b.example/", results[1].URL)
	assert.Equal(t, "D", results[2].Title)

	// page 20 has no results, which ends the query
	assert.Equal(t, []int{0, 10, 20}, ss.starts)
	for _, c := range ss.cookies {
		assert.Contains(t, c, "CONSENT=")
		assert.Contains(t, c, "SOCS=")
	}
	for _, ua := range ss.agents {
		assert.True(t, strings.HasPrefix(ua, "Lynx/"), ua)
	}
}

func TestScraper_StopsAtTarget(t *testing.T) {
	var blocks strings.Builder
	for i := range 8 {
		blocks.WriteString(resultBlock(fmt.Sprintf("https://r.example/%d", i), fmt.Sprintf("R%d", i), "s"))
	}
	ss := &scrapeServer{pages: map[int]string{0: blocks.String()}}
	srv := httptest.NewServer(ss)
	defer srv.Close()

	results, err := newTestScraper(srv).Execute(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, []int{0}, ss.starts)
}

func TestScraper_FailedPageKeepsCollected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "10" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(resultBlock("https://only.example", "Only", "s")))
	}))
	defer srv.Close()

	results, err := newTestScraper(srv).Execute(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://only.example", results[0].URL)
}

func TestScraper_CancelledContext(t *testing.T) {
	s := NewGoogleScraper(nil, zap.NewNop(), WithScraperDelays(0, 0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Execute(ctx, "q", 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnwrapResultLink(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/url?q=https://example.com/a%3Fb%3Dc&sa=U", "https://example.com/a?b=c"},
		{"/url?q=https://example.com/news+today&ved=1", "https://example.com/news+today"},
		{"https://direct.example/page", "https://direct.example/page"},
		{"/url?q=https://bad.example/%zz", "https://bad.example/%zz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unwrapResultLink(tt.href), tt.href)
	}
}
