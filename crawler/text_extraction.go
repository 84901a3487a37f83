package crawler

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

type HTMLExtractor struct {
	mode   string
	logger *zap.Logger
}

func NewHTMLExtractor(mode string, logger *zap.Logger) *HTMLExtractor {
	if mode == "" {
		mode = ModeText
	}
	return &HTMLExtractor{mode: mode, logger: logger}
}

// DecodeHTML converts body to UTF-8 using the charset from the content type or
// the document itself. Invalid byte sequences become U+FFFD.
func DecodeHTML(body []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(decoded), "\uFFFD"), nil
}

// ExtractText strips markup from htmlContent. Modes other than plain text fall
// back to plain text when they fail or find nothing.
func (e *HTMLExtractor) ExtractText(htmlContent, pageURL string) string {
	var (
		text string
		err  error
	)

	switch e.mode {
	case ModeReadability:
		text, err = extractWithReadability(htmlContent, pageURL)
	case ModeTrafilatura:
		text, err = extractWithTrafilatura(htmlContent, pageURL)
	case ModeMarkdown:
		text, err = htmltomarkdown.ConvertString(htmlContent)
	default:
		return PlainText(htmlContent)
	}

	if err != nil {
		e.logger.Debug("html extraction failed, using plain text",
			zap.String("mode", e.mode),
			zap.String("url", pageURL),
			zap.Error(err))
		return PlainText(htmlContent)
	}
	if strings.TrimSpace(text) == "" {
		return PlainText(htmlContent)
	}
	return text
}

// PlainText returns the text nodes of the document, one non-empty line per
// line of text, with scripts and styles dropped.
func PlainText(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func extractWithReadability(htmlContent, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: failed to parse URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

func extractWithTrafilatura(htmlContent, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("trafilatura: failed to parse URL: %w", err)
	}

	result, err := trafilatura.Extract(strings.NewReader(htmlContent), trafilatura.Options{
		OriginalURL: parsedURL,
	})
	if err != nil {
		return "", fmt.Errorf("trafilatura: %w", err)
	}
	return strings.TrimSpace(result.ContentText), nil
}
