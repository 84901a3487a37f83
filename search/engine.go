package search

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// EngineConfig carries the credentials that decide which strategy is used.
type EngineConfig struct {
	Backend      Strategy
	GoogleAPIKey string
	GoogleCX     string
	SerpAPIKey   string
	ProxyURL     string
}

// SelectStrategy picks the backend for a batch. The browser is never chosen
// automatically; otherwise the Google API wins when both key and cx are set,
// then SerpAPI, then scraping.
func SelectStrategy(cfg EngineConfig) (Strategy, error) {
	switch cfg.Backend {
	case StrategyBrowser, StrategyScrape:
		return cfg.Backend, nil
	case StrategyGoogle:
		if cfg.GoogleAPIKey == "" || cfg.GoogleCX == "" {
			return "", fmt.Errorf("google backend requires GOOGLE_API_KEY and GOOGLE_CX")
		}
		return StrategyGoogle, nil
	case StrategySerpAPI:
		if cfg.SerpAPIKey == "" {
			return "", fmt.Errorf("serpapi backend requires SERPAPI_API_KEY")
		}
		return StrategySerpAPI, nil
	case StrategyAuto, "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Backend)
	}

	switch {
	case cfg.GoogleAPIKey != "" && cfg.GoogleCX != "":
		return StrategyGoogle, nil
	case cfg.SerpAPIKey != "":
		return StrategySerpAPI, nil
	default:
		return StrategyScrape, nil
	}
}

// NewExecutor builds the executor chosen by SelectStrategy.
func NewExecutor(cfg EngineConfig, httpClient *http.Client, logger *zap.Logger) (Executor, error) {
	strategy, err := SelectStrategy(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("search strategy selected", zap.String("strategy", string(strategy)))

	switch strategy {
	case StrategyGoogle:
		return NewGoogleAPIEngine(httpClient, logger, cfg.GoogleAPIKey, cfg.GoogleCX), nil
	case StrategySerpAPI:
		return NewSerpApiSearchEngine(httpClient, logger, cfg.SerpAPIKey), nil
	case StrategyBrowser:
		return NewBrowser(logger, cfg.ProxyURL), nil
	default:
		return NewGoogleScraper(httpClient, logger), nil
	}
}
