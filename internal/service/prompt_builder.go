package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lshigami/wellrelay/internal/dto"
	"gorm.io/datatypes"
)

// AnalysisUnavailable is stored as ai_analysis when the LLM produced nothing usable.
const AnalysisUnavailable = "AI analysis unavailable"

// Keys returned by the journal analyzer.
var journalAnalysisKeys = []string{"likes", "dislikes", "important_terms", "panic_words"}

type promptResponse struct {
	QuestionID string  `json:"question_id"`
	Value      int     `json:"value"`
	Text       *string `json:"text,omitempty"`
}

// BuildAssessmentPrompt renders the enrichment prompt for a scored submission.
// The output is deterministic for a given input.
func BuildAssessmentPrompt(code string, totalScore int, riskLevel string, responses []dto.AssessmentResponseItem) string {
	items := make([]promptResponse, 0, len(responses))
	for _, r := range responses {
		items = append(items, promptResponse{QuestionID: r.QuestionID, Value: ScoreValue(r.Value), Text: r.Text})
	}
	raw, err := json.Marshal(items)
	if err != nil {
		raw = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("You are a supportive campus wellness assistant.\n")
	fmt.Fprintf(&b, "A student completed the %s assessment.\n", code)
	fmt.Fprintf(&b, "Total score: %d\n", totalScore)
	fmt.Fprintf(&b, "Risk level: %s\n", riskLevel)
	fmt.Fprintf(&b, "Responses: %s\n\n", raw)
	b.WriteString("Write a short, non-judgemental summary of what these results suggest and a few practical next steps.\n")
	b.WriteString("Respond with a JSON object containing exactly two keys:\n")
	b.WriteString(`"summary": a string, and "recommendations": a list of strings.` + "\n")
	b.WriteString("Do not include any other keys or any text outside the JSON object.")
	return b.String()
}

// BuildJournalPrompt renders the journal analysis prompt.
func BuildJournalPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Analyze the following student journal entry.\n")
	b.WriteString("Respond with a JSON object containing exactly these keys, each a list of short strings:\n")
	b.WriteString(`"likes": things the writer enjoyed, `)
	b.WriteString(`"dislikes": things the writer disliked, `)
	b.WriteString(`"important_terms": notable people, places or topics, `)
	b.WriteString(`"panic_words": words signalling distress or crisis.` + "\n")
	b.WriteString("Do not include any text outside the JSON object.\n\n")
	b.WriteString("Journal entry:\n")
	b.WriteString(content)
	return b.String()
}

// ParseAnalysis turns an LLM completion into a JSON object. JSON objects pass
// through as-is (markdown fences are stripped); any other non-empty text is
// wrapped as {"summary": text}.
func ParseAnalysis(text string) datatypes.JSONMap {
	analysis, _ := parseCompletion(text)
	return analysis
}

// parseCompletion reports whether the completion was a JSON object.
func parseCompletion(text string) (datatypes.JSONMap, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return UnavailableAnalysis(), false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(trimmed)), &obj); err == nil && obj != nil {
		return datatypes.JSONMap(obj), true
	}
	return datatypes.JSONMap{"summary": trimmed}, false
}

// ParseJournalAnalysis is ParseAnalysis with the journal keys always present.
func ParseJournalAnalysis(text string) datatypes.JSONMap {
	analysis, _ := parseJournalCompletion(text)
	return analysis
}

func parseJournalCompletion(text string) (datatypes.JSONMap, bool) {
	analysis, structured := parseCompletion(text)
	if _, failed := analysis["error"]; failed {
		return analysis, structured
	}
	for _, key := range journalAnalysisKeys {
		if _, ok := analysis[key]; !ok {
			analysis[key] = []any{}
		}
	}
	return analysis, structured
}

func UnavailableAnalysis() datatypes.JSONMap {
	return datatypes.JSONMap{"error": AnalysisUnavailable}
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag such as ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
