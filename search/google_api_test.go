package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pageRequest struct {
	start, num int
}

// googleAPIServer serves total items and fails every page whose start is in failAt.
func googleAPIServer(t *testing.T, total int, failAt map[int]int) (*httptest.Server, func() []pageRequest) {
	t.Helper()
	var (
		mu    sync.Mutex
		pages []pageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, _ := strconv.Atoi(q.Get("start"))
		num, _ := strconv.Atoi(q.Get("num"))
		mu.Lock()
		pages = append(pages, pageRequest{start, num})
		mu.Unlock()

		if q.Get("key") != "k" || q.Get("cx") != "cx" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if code, ok := failAt[start]; ok {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
			return
		}

		type item struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		}
		var items []item
		for i := start; i < start+num && i <= total; i++ {
			items = append(items, item{
				Title:   fmt.Sprintf("Result %d", i),
				Link:    fmt.Sprintf("https://news.example/%d", i),
				Snippet: fmt.Sprintf("snippet %d", i),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []pageRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]pageRequest(nil), pages...)
	}
}

func newTestGoogleAPI(srv *httptest.Server, logger *zap.Logger) *GoogleAPIEngine {
	return NewGoogleAPIEngine(srv.Client(), logger, "k", "cx",
		WithGoogleEndpoint(srv.URL),
		WithGooglePageDelay(0))
}

func TestGoogleAPI_Paginates(t *testing.T) {
	srv, pages := googleAPIServer(t, 100, nil)
	g := newTestGoogleAPI(srv, zap.NewNop())

	results, err := g.Execute(context.Background(), "election", 15)
	require.NoError(t, err)

	require.Len(t, results, 15)
	assert.Equal(t, []pageRequest{{1, 10}, {11, 5}}, pages())
	assert.Equal(t, "Result 1", results[0].Title)
	assert.Equal(t, "https://news.example/15", results[14].URL)
	assert.Equal(t, "snippet 15", results[14].Content)
	assert.Nil(t, results[0].RawContent)
	assert.Nil(t, results[0].Score)
}

func TestGoogleAPI_SmallRequestIsOnePage(t *testing.T) {
	srv, pages := googleAPIServer(t, 100, nil)
	g := newTestGoogleAPI(srv, zap.NewNop())

	results, err := g.Execute(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, []pageRequest{{1, 5}}, pages())
}

func TestGoogleAPI_ShortPageStops(t *testing.T) {
	srv, pages := googleAPIServer(t, 12, nil)
	g := newTestGoogleAPI(srv, zap.NewNop())

	results, err := g.Execute(context.Background(), "q", 30)
	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.Equal(t, []pageRequest{{1, 10}, {11, 10}}, pages())
}

func TestGoogleAPI_ErrorStatusKeepsCollected(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	srv, pages := googleAPIServer(t, 100, map[int]int{11: http.StatusTooManyRequests})
	g := newTestGoogleAPI(srv, zap.New(core))

	results, err := g.Execute(context.Background(), "q", 25)
	require.NoError(t, err)
	assert.Len(t, results, 10)
	assert.Len(t, pages(), 2)

	entries := logs.FilterMessage("google search api error").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusTooManyRequests, entries[0].ContextMap()["status"])
	assert.Contains(t, entries[0].ContextMap()["body"], "quota")
}

func TestGoogleAPI_FirstPageErrorIsEmpty(t *testing.T) {
	srv, _ := googleAPIServer(t, 100, map[int]int{1: http.StatusInternalServerError})
	g := newTestGoogleAPI(srv, zap.NewNop())

	results, err := g.Execute(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGoogleAPI_TransportError(t *testing.T) {
	srv, _ := googleAPIServer(t, 100, nil)
	g := newTestGoogleAPI(srv, zap.NewNop())
	srv.Close()

	_, err := g.Execute(context.Background(), "q", 5)
	assert.Error(t, err)
}

func TestSerpAPI_Paginates(t *testing.T) {
	var (
		mu     sync.Mutex
		starts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		starts = append(starts, q.Get("start"))
		mu.Unlock()
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "secret", q.Get("api_key"))

		start, _ := strconv.Atoi(q.Get("start"))
		num, _ := strconv.Atoi(q.Get("num"))
		var organic []map[string]any
		for i := start; i < start+num; i++ {
			organic = append(organic, map[string]any{
				"position": i + 1,
				"title":    fmt.Sprintf("R%d", i),
				"link":     fmt.Sprintf("https://serp.example/%d", i),
				"snippet":  "s",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"organic_results": organic})
	}))
	defer srv.Close()

	s := NewSerpApiSearchEngine(srv.Client(), zap.NewNop(), "secret")
	s.endpoint = srv.URL
	s.pageDelay = 0

	results, err := s.Execute(context.Background(), "q", 12)
	require.NoError(t, err)
	require.Len(t, results, 12)
	assert.Equal(t, []string{"0", "10"}, starts)
	assert.Equal(t, "https://serp.example/11", results[11].URL)
	assert.Equal(t, StrategySerpAPI, s.Strategy())
	assert.Equal(t, apiQueryConcurrency, s.MaxConcurrency())
}

func TestSerpAPI_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSerpApiSearchEngine(srv.Client(), zap.NewNop(), "bad")
	s.endpoint = srv.URL

	results, err := s.Execute(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
