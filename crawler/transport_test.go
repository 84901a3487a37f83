package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHTTPClient(t *testing.T) {
	for _, proxyURL := range []string{"", "http://127.0.0.1:8118", "socks5://127.0.0.1:9050"} {
		client, err := NewHTTPClient(proxyURL)
		require.NoError(t, err, proxyURL)
		assert.NotNil(t, client.Transport)
	}

	_, err := NewHTTPClient("ftp://127.0.0.1:21")
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := WithRunID(context.Background(), "run-42")
	assert.Equal(t, "run-42", RunID(ctx))

	ContextLogger(ctx, base).Info("hello")
	ContextLogger(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "run-42", entries[0].ContextMap()["run_id"])
	assert.NotContains(t, entries[1].ContextMap(), "run_id")
}
