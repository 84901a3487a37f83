package agent

import (
	"strings"
	"time"
)

const (
	VerdictTrue          = "True"
	VerdictFalse         = "False"
	VerdictPartiallyTrue = "Partially True"
)

// Facts are the 5W1H elements of a news item.
type Facts struct {
	Who   string `json:"who"`
	What  string `json:"what"`
	When  string `json:"when"`
	Where string `json:"where"`
	Why   string `json:"why"`
	How   string `json:"how"`
}

// FactQuery is one search suggestion from the fact-check step. Only Query is
// used to search.
type FactQuery struct {
	Query   string `json:"query"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type Evidence struct {
	KeyEvidence    []string `json:"key_evidence"`
	Contradictions []string `json:"contradictions"`
	Summary        string   `json:"summary"`
}

type Analysis struct {
	Analysis    string   `json:"analysis"`
	Controversy []string `json:"controversy"`
	Credibility string   `json:"credibility" validate:"omitempty,oneof=High Medium Low"`
}

func (a *Analysis) normalize() {
	a.Credibility = titleWord(a.Credibility)
}

type TimelineEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

type Timeliness struct {
	Timeline      []TimelineEvent `json:"timeline"`
	LatestUpdates []string        `json:"latest_updates"`
	Note          string          `json:"note,omitempty"`
}

type Judgement struct {
	Result    string   `json:"result" validate:"required,oneof=True False 'Partially True'"`
	Reason    string   `json:"reason"`
	Sources   []string `json:"sources"`
	Timestamp string   `json:"timestamp"`
}

func (j *Judgement) normalize() {
	switch strings.ToLower(strings.TrimSpace(j.Result)) {
	case "true":
		j.Result = VerdictTrue
	case "false":
		j.Result = VerdictFalse
	case "partially true":
		j.Result = VerdictPartiallyTrue
	}
}

// Result is everything a judge run produces.
type Result struct {
	RunID         string          `json:"run_id"`
	News          string          `json:"news"`
	NewsEnglish   string          `json:"news_en"`
	Judgement     Judgement       `json:"judge_json"`
	Report        string          `json:"markdown_report"`
	Facts         Facts           `json:"facts"`
	Queries       []string        `json:"queries"`
	Evidence      Evidence        `json:"evidence"`
	Analysis      Analysis        `json:"analysis"`
	Timeline      []TimelineEvent `json:"timeline"`
	LatestUpdates []string        `json:"latest_updates"`
	Visualization string          `json:"visualization"`
	Sources       string          `json:"sources"`
	CreatedAt     time.Time       `json:"created_at"`
}

func defaultEvidence() Evidence {
	return Evidence{KeyEvidence: []string{}, Contradictions: []string{}}
}

func defaultAnalysis() Analysis {
	return Analysis{Controversy: []string{}}
}

func defaultTimeliness() Timeliness {
	return Timeliness{Timeline: []TimelineEvent{}, LatestUpdates: []string{}}
}

func defaultJudgement(now string) Judgement {
	return Judgement{Result: VerdictPartiallyTrue, Sources: []string{}, Timestamp: now}
}

func titleWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
