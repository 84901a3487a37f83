package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"verynews/pkg/literal"

	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

var ErrMissingLLMKey = errors.New("missing LLM API key")

type Config struct {
	AppPort      int    `yaml:"app_port"`
	ProxyURL     string `yaml:"proxy_url"`
	ReportDBPath string `yaml:"report_db_path"`

	LLMProvider   string  `yaml:"llm_provider"`
	Model         string  `yaml:"model"`
	GeminiAPIKey  string  `yaml:"gemini_api_key"`
	OpenAIAPIKey  string  `yaml:"openai_api_key"`
	OpenAIBaseURL string  `yaml:"openai_base_url"`
	Temperature   float64 `yaml:"temperature"`

	SearchBackend string   `yaml:"search_backend"`
	GoogleAPIKey  string   `yaml:"google_api_key"`
	GoogleCX      string   `yaml:"google_cx"`
	SerpAPIKey    string   `yaml:"serpapi_api_key"`
	TrustedSites  []string `yaml:"sites_trusted_source"`

	MaxResults         int           `yaml:"max_results"`
	MaxTokensPerSource int           `yaml:"max_tokens_per_source"`
	IncludeRawContent  bool          `yaml:"include_raw_content"`
	MaxPDFPages        int           `yaml:"max_pdf_pages"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout"`
	HTMLExtractor      string        `yaml:"html_extractor"`
}

func Default() *Config {
	return &Config{
		AppPort:            8080,
		LLMProvider:        "gemini",
		Model:              "gemini-2.0-flash",
		SearchBackend:      "auto",
		MaxResults:         5,
		MaxTokensPerSource: 5000,
		IncludeRawContent:  true,
		MaxPDFPages:        5,
		FetchTimeout:       30 * time.Second,
		HTMLExtractor:      "text",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// VERYNEWS_CONFIG and the environment, in increasing priority. A .env file in
// the working directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("VERYNEWS_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.ProxyURL, "PROXY_URL")
	setString(&c.ReportDBPath, "REPORT_DB_PATH")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.Model, "MODEL")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.SearchBackend, "SEARCH_BACKEND")
	setString(&c.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&c.GoogleCX, "GOOGLE_CX")
	setString(&c.SerpAPIKey, "SERPAPI_API_KEY")
	setString(&c.HTMLExtractor, "HTML_EXTRACTOR")

	// The Gemini key historically shared GOOGLE_API_KEY.
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = c.GoogleAPIKey
	}

	if v := os.Getenv("SITES_TRUSTED_SOURCE"); v != "" {
		sites, err := ParseSites(v)
		if err != nil {
			return fmt.Errorf("invalid SITES_TRUSTED_SOURCE: %w", err)
		}
		c.TrustedSites = sites
	}

	for _, f := range []struct {
		key string
		dst *int
	}{
		{"APP_PORT", &c.AppPort},
		{"MAX_RESULTS", &c.MaxResults},
		{"MAX_TOKENS_PER_SOURCE", &c.MaxTokensPerSource},
		{"MAX_PDF_PAGES", &c.MaxPDFPages},
	} {
		if err := setInt(f.dst, f.key); err != nil {
			return err
		}
	}

	if v := os.Getenv("INCLUDE_RAW_CONTENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid INCLUDE_RAW_CONTENT %q: %w", v, err)
		}
		c.IncludeRawContent = b
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT %q: %w", v, err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TEMPERATURE %q: %w", v, err)
		}
		c.Temperature = f
	}
	return nil
}

// ValidateLLM reports ErrMissingLLMKey when the selected provider has no key.
func (c *Config) ValidateLLM() error {
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingLLMKey)
		}
	default:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY or GOOGLE_API_KEY", ErrMissingLLMKey)
		}
	}
	return nil
}

// ParseSites accepts a JSON or Python list literal, or a comma separated list.
func ParseSites(v string) ([]string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	var sites []string
	if strings.HasPrefix(v, "[") {
		if err := json5.Unmarshal([]byte(literal.ToJSON(v)), &sites); err != nil {
			return nil, err
		}
	} else {
		sites = strings.Split(v, ",")
	}

	out := sites[:0]
	for _, s := range sites {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
