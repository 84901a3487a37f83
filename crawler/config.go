package crawler

import (
	"time"

	"verynews/pkg/retry"
)

const (
	ModeText        = "text"
	ModeReadability = "readability"
	ModeTrafilatura = "trafilatura"
	ModeMarkdown    = "markdown"
)

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"

type FetcherConfig struct {
	Retry       retry.Policy
	MaxPDFBytes int64
	MaxPDFPages int
	HTMLMode    string
	Accept      string
}

// DefaultConfig returns the fetcher configuration used when nothing is set
func DefaultConfig() *FetcherConfig {
	return &FetcherConfig{
		Retry: retry.Policy{
			MaxAttempts: 3,
			Timeout:     30 * time.Second,
			JitterMin:   200 * time.Millisecond,
			JitterMax:   800 * time.Millisecond,
		},
		MaxPDFBytes: 10 * 1024 * 1024,
		MaxPDFPages: 5,
		HTMLMode:    ModeText,
		Accept:      defaultAccept,
	}
}
