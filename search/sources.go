package search

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	charsPerToken   = 4
	truncatedMarker = "... [truncated]"
	digestHeader    = "Content from sources:"
	rawPrefix       = "Full source content limited to "
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// SourceMap holds one result per URL. A later result for the same URL
// replaces the earlier one but keeps its position.
type SourceMap struct {
	order []string
	byURL map[string]SearchResult
}

// UniqueSources flattens a Batch into a SourceMap ordered by first discovery.
func UniqueSources(batch Batch) *SourceMap {
	m := &SourceMap{byURL: make(map[string]SearchResult)}
	for _, resp := range batch {
		for _, r := range resp.Results {
			if _, ok := m.byURL[r.URL]; !ok {
				m.order = append(m.order, r.URL)
			}
			m.byURL[r.URL] = r
		}
	}
	return m
}

func (m *SourceMap) Len() int { return len(m.order) }

func (m *SourceMap) Get(url string) (SearchResult, bool) {
	r, ok := m.byURL[url]
	return r, ok
}

// Sources returns the results in first-discovery order.
func (m *SourceMap) Sources() []SearchResult {
	out := make([]SearchResult, 0, len(m.order))
	for _, u := range m.order {
		out = append(out, m.byURL[u])
	}
	return out
}

// Truncate caps s at maxTokens*4 characters and marks the cut.
func Truncate(s string, maxTokens int) string {
	limit := maxTokens * charsPerToken
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:max(limit, 0)]) + truncatedMarker
}

// FormatSources renders the deduplicated results of a batch as a text digest
// suitable for an LLM prompt.
func FormatSources(batch Batch, maxTokensPerSource int, includeRawContent bool, logger *zap.Logger) string {
	var b strings.Builder
	b.WriteString(digestHeader + "\n")

	for _, src := range UniqueSources(batch).Sources() {
		b.WriteString(heavyRule + "\n")
		fmt.Fprintf(&b, "Source: %s\n", src.Title)
		b.WriteString(lightRule + "\n")
		fmt.Fprintf(&b, "URL: %s\n===\n", src.URL)
		fmt.Fprintf(&b, "Most relevant content from source: %s\n===\n", src.Content)
		if includeRawContent {
			raw := ""
			if src.RawContent != nil {
				raw = Truncate(*src.RawContent, maxTokensPerSource)
			} else if logger != nil {
				logger.Warn("no raw content found for source", zap.String("url", src.URL))
			}
			fmt.Fprintf(&b, "%s%d tokens: %s\n\n", rawPrefix, maxTokensPerSource, raw)
		}
		b.WriteString(heavyRule + "\n\n")
	}

	return strings.TrimSpace(b.String())
}

// ParsedSource is one block read back from a digest.
type ParsedSource struct {
	Title      string
	URL        string
	Snippet    string
	Content    string
	HasContent bool
	Truncated  bool
}

// ParseSources reads a digest produced by FormatSources back into its blocks.
// Fields that themselves contain the digest separators are not recoverable.
func ParseSources(digest string) []ParsedSource {
	body := strings.TrimPrefix(digest, digestHeader)
	body = strings.TrimPrefix(body, "\n")
	if body == "" {
		return nil
	}

	var sources []ParsedSource
	for _, block := range strings.Split(body, heavyRule+"\nSource: ")[1:] {
		block = strings.TrimSuffix(block, "\n\n")
		block = strings.TrimSuffix(block, heavyRule)

		title, rest, ok := strings.Cut(block, "\n"+lightRule+"\nURL: ")
		if !ok {
			continue
		}
		url, rest, ok := strings.Cut(rest, "\n===\nMost relevant content from source: ")
		if !ok {
			continue
		}
		snippet, rest, ok := strings.Cut(rest, "\n===\n")
		if !ok {
			continue
		}

		src := ParsedSource{Title: title, URL: url, Snippet: snippet}
		if strings.HasPrefix(rest, rawPrefix) {
			if _, raw, ok := strings.Cut(rest, " tokens: "); ok {
				raw = strings.TrimSuffix(raw, "\n\n")
				src.HasContent = true
				src.Truncated = strings.HasSuffix(raw, truncatedMarker)
				src.Content = strings.TrimSuffix(raw, truncatedMarker)
			}
		}
		sources = append(sources, src)
	}
	return sources
}
