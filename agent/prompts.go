package agent

import (
	"github.com/tmc/langchaingo/prompts"
)

const (
	keyNews          = "news_content"
	keyCurrentTime   = "current_time"
	keyFacts         = "facts"
	keySearchResults = "search_results"
	keyEvidence      = "evidence"
	keyAnalysis      = "analysis"
	keyLatestUpdates = "latest_updates"
	keyTimeline      = "timeline"
	keyJudgement     = "judge_json"
	keyVisualization = "visualization"
)

var (
	translatePrompt = prompts.NewPromptTemplate(`
You are a professional news translator. Please accurately and fluently translate the following news content into English:
{{.news_content}}
Only output the English translation. Do not add any explanation.
`, []string{keyNews})

	factsPrompt = prompts.NewPromptTemplate(`
You are an expert in news fact extraction. Please use the 5W1H method to structure the key elements of the following news content:
{{.news_content}}
Current research time: {{.current_time}}
For each element (Who, What, When, Where, Why, How):
- If the information is explicitly provided, extract it directly.
- If not explicitly provided, try to infer it from the context.
- If you cannot infer, use a reasonable default:
    - For 'When', if no time is given and cannot be inferred, you must output 'Current research time within the past month'. Never use the current time or a guessed specific date.
    - For other elements, use 'unknown' or 'cannot be determined'.
- For any inferred or defaulted value, clearly indicate in the output that it is inferred or defaulted.
Output format:
{
  "who": "...",  # (explicit/inferred/defaulted)
  "what": "...",  # (explicit/inferred/defaulted)
  "when": "...",  # (explicit/inferred/defaulted)
  "where": "...", # (explicit/inferred/defaulted)
  "why": "...",   # (explicit/inferred/defaulted)
  "how": "..."    # (explicit/inferred/defaulted)
}
`, []string{keyNews, keyCurrentTime})

	factCheckPrompt = prompts.NewPromptTemplate(`
You are a news fact-checking agent. Based on the news content and 5W1H elements, generate Google search queries, search for authoritative information, and output relevant evidence summaries and references.
News content: {{.news_content}}
5W1H: {{.facts}}
Current research time: {{.current_time}}
Output format:
[
  {"query": "...", "title": "...", "url": "...", "snippet": "..."},
  ...
]
`, []string{keyNews, keyFacts, keyCurrentTime})

	evidencePrompt = prompts.NewPromptTemplate(`
You are an evidence aggregation agent. Please deduplicate, summarize, and aggregate the following search results to form a chain of facts, highlighting key evidence and contradictions.
Search results: {{.search_results}}
Current research time: {{.current_time}}
Output format:
{"key_evidence": ["..."], "contradictions": ["..."], "summary": "..."}
`, []string{keySearchResults, keyCurrentTime})

	analysisPrompt = prompts.NewPromptTemplate(`
You are a news domain expert. Please analyze the following news, 5W1H elements, and evidence chain, pointing out controversies, credibility, and potential misleading points.
News content: {{.news_content}}
5W1H: {{.facts}}
Evidence chain: {{.evidence}}
Current research time: {{.current_time}}
Output format:
{"analysis": "...", "controversy": ["..."], "credibility": "High/Medium/Low"}
`, []string{keyNews, keyFacts, keyEvidence, keyCurrentTime})

	timelinessPrompt = prompts.NewPromptTemplate(`
You are a timeliness tracking agent. Only generate a timeline and latest developments strictly based on the information explicitly found in the user input and the search results. Do not invent or assume any events or dates that are not directly supported by the provided content.
News content: {{.news_content}}
5W1H: {{.facts}}
Evidence chain: {{.evidence}}
Current research time: {{.current_time}}
All timeline and latest developments should be considered up to the current research time: {{.current_time}}.
If there is not enough information to construct a meaningful timeline (e.g., only vague or single-sentence claims), simply state: "Unable to provide an effective timeline analysis due to insufficient event and time information."
Output format:
If timeline is possible:
{
  "timeline": [{"date": "YYYY-MM-DD", "event": "..."} ...],
  "latest_updates": ["..."]
}
If not possible:
{
  "timeline": [],
  "latest_updates": [],
  "note": "Unable to provide an effective timeline analysis due to insufficient event and time information."
}
`, []string{keyNews, keyFacts, keyEvidence, keyCurrentTime})

	judgementPrompt = prompts.NewPromptTemplate(`
You are a news authenticity judgment agent. Based on the news content, 5W1H, evidence chain, expert analysis, and latest developments, provide a conclusion ("True", "False", or "Partially True"), and explain your reasoning and references.

Strict rule: Only choose "Partially True" if at least one fact in the user's news input is supported by a credible source or evidence. If no facts are supported by any source, you must choose either "True" (if all facts are supported) or "False" (if none are supported). Do not choose "Partially True" unless there is at least one matching, sourced fact.

News content: {{.news_content}}
5W1H: {{.facts}}
Evidence chain: {{.evidence}}
Expert analysis: {{.analysis}}
Latest developments: {{.latest_updates}}
Current research time: {{.current_time}}
Output format:
{"result": "True/False/Partially True", "reason": "...", "sources": ["..."], "timestamp": "..."}
`, []string{keyNews, keyFacts, keyEvidence, keyAnalysis, keyLatestUpdates, keyCurrentTime})

	visualizationPrompt = prompts.NewPromptTemplate(`
You are a visualization summary agent. Please generate a timeline, key points table, and relationship diagram (in Markdown format) for the following news event.
News content: {{.news_content}}
5W1H: {{.facts}}
Evidence chain: {{.evidence}}
Expert analysis: {{.analysis}}
Timeline: {{.timeline}}
Current research time: {{.current_time}}
Output format:
- Timeline (Markdown table)
- Main people/events relationships (Markdown list or flowchart text)
- Key points summary (Markdown list)
`, []string{keyNews, keyFacts, keyEvidence, keyAnalysis, keyTimeline, keyCurrentTime})

	reportPrompt = prompts.NewPromptTemplate(`
You are a news report expert. Please integrate the following content into a structured, professional, and highly readable Markdown research report, including conclusion summary, 5W1H, timeline, evidence chain, expert analysis, visualization summary, and references.
News content: {{.news_content}}
5W1H: {{.facts}}
Evidence chain: {{.evidence}}
Expert analysis: {{.analysis}}
Authenticity judgment: {{.judge_json}}
Timeline: {{.timeline}}
Latest developments: {{.latest_updates}}
Visualization summary: {{.visualization}}
Current research time: {{.current_time}}
Output format:
# News Authenticity Conclusion (as of {{.current_time}})
## 5W1H Elements
## Event Timeline
## Evidence Chain & Multiple Perspectives
## Expert Analysis
## Visualization Summary
## References & Citations
`, []string{keyNews, keyFacts, keyEvidence, keyAnalysis, keyJudgement, keyTimeline, keyLatestUpdates, keyVisualization, keyCurrentTime})
)
