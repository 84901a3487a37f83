package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"verynews/crawler"
	"verynews/pkg/llm"
	"verynews/pkg/metrics"
	"verynews/search"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"
)

// Searcher runs a batch of queries. *search.Orchestrator satisfies it.
type Searcher interface {
	Search(ctx context.Context, queries []string, opts search.Options) search.Batch
}

type Config struct {
	MaxResults         int
	MaxTokensPerSource int
	IncludeRawContent  bool
	TrustedSites       []string
}

func DefaultConfig() Config {
	return Config{
		MaxResults:         5,
		MaxTokensPerSource: 5000,
		IncludeRawContent:  true,
	}
}

// Judge runs the fact-checking pipeline over a news item. Every step that
// fails falls back to an empty default so a run always produces a report.
type Judge struct {
	llm      llm.Client
	searcher Searcher
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewJudge(client llm.Client, searcher Searcher, config Config, logger *zap.Logger) *Judge {
	return &Judge{
		llm:      client,
		searcher: searcher,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Run judges news and returns the verdict with its report.
func (j *Judge) Run(ctx context.Context, news string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runID := crawler.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = crawler.WithRunID(ctx, runID)
	}
	logger := crawler.ContextLogger(ctx, j.logger)

	created := j.now().UTC()
	currentTime := created.Format("2006-01-02T15:04:05.000000") + "Z"
	logger.Info("judge started", zap.Int("news_len", len(news)))

	res := &Result{RunID: runID, News: news, CreatedAt: created}

	res.NewsEnglish = j.translate(ctx, news)

	res.Facts = j.facts(ctx, res.NewsEnglish, currentTime)
	factsJSON := toJSON(res.Facts)

	res.Queries = j.factCheckQueries(ctx, res.NewsEnglish, factsJSON, currentTime)
	batch := j.searcher.Search(ctx, res.Queries, search.Options{
		MaxResults:        j.config.MaxResults,
		IncludeRawContent: j.config.IncludeRawContent,
		TrustedSites:      j.config.TrustedSites,
	})
	res.Sources = search.FormatSources(batch, j.config.MaxTokensPerSource, j.config.IncludeRawContent, logger)

	res.Evidence = j.evidence(ctx, res.Sources, currentTime)
	evidenceJSON := toJSON(res.Evidence)

	res.Analysis = j.analysis(ctx, res.NewsEnglish, factsJSON, evidenceJSON, currentTime)
	analysisJSON := toJSON(res.Analysis)

	timeliness := j.timeliness(ctx, res.NewsEnglish, factsJSON, evidenceJSON, currentTime)
	res.Timeline, res.LatestUpdates = timeliness.Timeline, timeliness.LatestUpdates
	timelineJSON, updatesJSON := toJSON(res.Timeline), toJSON(res.LatestUpdates)

	res.Judgement = j.judgement(ctx, map[string]any{
		keyNews:          res.NewsEnglish,
		keyFacts:         factsJSON,
		keyEvidence:      evidenceJSON,
		keyAnalysis:      analysisJSON,
		keyLatestUpdates: updatesJSON,
		keyCurrentTime:   currentTime,
	}, currentTime)
	metrics.Verdicts.WithLabelValues(res.Judgement.Result).Inc()

	res.Visualization = j.freeText(ctx, "visualization", visualizationPrompt, map[string]any{
		keyNews:        res.NewsEnglish,
		keyFacts:       factsJSON,
		keyEvidence:    evidenceJSON,
		keyAnalysis:    analysisJSON,
		keyTimeline:    timelineJSON,
		keyCurrentTime: currentTime,
	})

	res.Report = j.freeText(ctx, "report", reportPrompt, map[string]any{
		keyNews:          res.NewsEnglish,
		keyFacts:         factsJSON,
		keyEvidence:      evidenceJSON,
		keyAnalysis:      analysisJSON,
		keyJudgement:     toJSON(res.Judgement),
		keyTimeline:      timelineJSON,
		keyLatestUpdates: updatesJSON,
		keyVisualization: res.Visualization,
		keyCurrentTime:   currentTime,
	})

	logger.Info("judge finished",
		zap.String("result", res.Judgement.Result),
		zap.Int("queries", len(res.Queries)))
	return res, nil
}

func (j *Judge) translate(ctx context.Context, news string) string {
	out, ok := j.call(ctx, "translate", translatePrompt, map[string]any{keyNews: news})
	if !ok || strings.TrimSpace(out) == "" {
		return news
	}
	return strings.TrimSpace(out)
}

func (j *Judge) facts(ctx context.Context, news, now string) Facts {
	out, _ := j.call(ctx, "5w1h", factsPrompt, map[string]any{keyNews: news, keyCurrentTime: now})
	return decodeStep(ctx, j, "5w1h", out, Facts{})
}

func (j *Judge) factCheckQueries(ctx context.Context, news, facts, now string) []string {
	out, _ := j.call(ctx, "fact_check", factCheckPrompt, map[string]any{
		keyNews:        news,
		keyFacts:       facts,
		keyCurrentTime: now,
	})
	items := decodeStep(ctx, j, "fact_check", out, []FactQuery(nil))

	var queries []string
	for _, item := range items {
		if q := strings.TrimSpace(item.Query); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		return []string{news}
	}
	return queries
}

func (j *Judge) evidence(ctx context.Context, sources, now string) Evidence {
	out, _ := j.call(ctx, "evidence", evidencePrompt, map[string]any{
		keySearchResults: sources,
		keyCurrentTime:   now,
	})
	ev := decodeStep(ctx, j, "evidence", out, defaultEvidence())
	if ev.KeyEvidence == nil {
		ev.KeyEvidence = []string{}
	}
	if ev.Contradictions == nil {
		ev.Contradictions = []string{}
	}
	return ev
}

func (j *Judge) analysis(ctx context.Context, news, facts, evidence, now string) Analysis {
	out, _ := j.call(ctx, "analysis", analysisPrompt, map[string]any{
		keyNews:        news,
		keyFacts:       facts,
		keyEvidence:    evidence,
		keyCurrentTime: now,
	})
	a := decodeStep(ctx, j, "analysis", out, defaultAnalysis())
	if a.Controversy == nil {
		a.Controversy = []string{}
	}
	return a
}

func (j *Judge) timeliness(ctx context.Context, news, facts, evidence, now string) Timeliness {
	out, _ := j.call(ctx, "timeliness", timelinessPrompt, map[string]any{
		keyNews:        news,
		keyFacts:       facts,
		keyEvidence:    evidence,
		keyCurrentTime: now,
	})
	t := decodeStep(ctx, j, "timeliness", out, defaultTimeliness())
	if t.Timeline == nil {
		t.Timeline = []TimelineEvent{}
	}
	if t.LatestUpdates == nil {
		t.LatestUpdates = []string{}
	}
	return t
}

func (j *Judge) judgement(ctx context.Context, values map[string]any, now string) Judgement {
	out, _ := j.call(ctx, "judgement", judgementPrompt, values)
	jd := decodeStep(ctx, j, "judgement", out, defaultJudgement(now))
	if jd.Sources == nil {
		jd.Sources = []string{}
	}
	if jd.Timestamp == "" {
		jd.Timestamp = now
	}
	return jd
}

func (j *Judge) freeText(ctx context.Context, step string, tmpl prompts.PromptTemplate, values map[string]any) string {
	out, _ := j.call(ctx, step, tmpl, values)
	return out
}

// call renders tmpl and sends it to the model. ok is false when either fails;
// the failure is logged and counted.
func (j *Judge) call(ctx context.Context, step string, tmpl prompts.PromptTemplate, values map[string]any) (string, bool) {
	logger := crawler.ContextLogger(ctx, j.logger)

	prompt, err := tmpl.Format(values)
	if err != nil {
		logger.Error("failed to render prompt", zap.String("step", step), zap.Error(err))
		metrics.LLMCalls.WithLabelValues(step, "prompt_error").Inc()
		return "", false
	}

	out, err := j.llm.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("llm call failed", zap.String("step", step), zap.Error(err))
		metrics.LLMCalls.WithLabelValues(step, "llm_error").Inc()
		return "", false
	}
	metrics.LLMCalls.WithLabelValues(step, "ok").Inc()
	return out, true
}

func decodeStep[T any](ctx context.Context, j *Judge, step, out string, fallback T) T {
	if out == "" {
		return fallback
	}
	p := Decode(out, fallback)
	if !p.OK {
		crawler.ContextLogger(ctx, j.logger).Warn("could not parse model output, using default",
			zap.String("step", step),
			zap.Error(p.Err))
		metrics.LLMCalls.WithLabelValues(step, "parse_error").Inc()
	}
	return p.Value
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
