package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
)

const (
	fieldScore       = "score"
	fieldSummary     = "summary"
	fieldFeedback    = "feedback"
	fieldJobCategory = "job_category"
	fieldQuestions   = "questions"

	fieldQuestionPrompt = "q"
	fieldQuestionIntent = "intent"
	fieldQuestionTip    = "tip"

	minScore = 0
	maxScore = 100
)

// Field name variants seen in model output, mapped to the canonical key.
// The first alias present wins.
var resultAliases = []struct {
	canonical string
	aliases   []string
}{
	{fieldScore, []string{"score", "fit_score", "fitScore"}},
	{fieldSummary, []string{"summary", "fit_reason", "fitReason"}},
	{fieldFeedback, []string{"feedback"}},
	{fieldJobCategory, []string{"job_category", "jobCategory", "category"}},
	{fieldQuestions, []string{"questions"}},
}

var questionAliases = []struct {
	canonical string
	aliases   []string
}{
	{fieldQuestionPrompt, []string{"q", "question"}},
	{fieldQuestionIntent, []string{"intent"}},
	{fieldQuestionTip, []string{"tip", "tips", "answer_tip"}},
}

const fence = "```"

// Document is a model payload normalized to canonical field names.
type Document map[string]any

// StripFences removes a Markdown code fence wrapped around the payload.
// The text must end with a closing fence and open with one either at its
// start or at the start of a line, so backticks inside JSON strings are left
// alone. Anything else is only trimmed.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, fence) {
		return s
	}

	start := 0
	if !strings.HasPrefix(s, fence) {
		i := strings.Index(s, "\n"+fence)
		if i == -1 {
			return s
		}
		start = i + 1
	}

	end := len(s) - len(fence)
	if end < start+len(fence) {
		return s
	}

	body := s[start+len(fence) : end]
	// info string, e.g. "json"
	if info, rest, ok := strings.Cut(body, "\n"); ok && isInfoString(info) {
		body = rest
	}

	return strings.TrimSpace(body)
}

func isInfoString(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ParseDocument decodes raw model output into a normalized Document.
// Fences are stripped unless the provider enforced structured output.
// A score present at this stage is range checked immediately.
func ParseDocument(raw string, structured bool) (Document, error) {
	cleaned := strings.TrimSpace(raw)
	if !structured {
		cleaned = StripFences(cleaned)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if data == nil {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("expected a JSON object")}
	}

	doc := normalize(data)

	if _, ok := doc[fieldScore]; ok {
		if _, problem := doc.score(); problem != "" {
			return nil, &SchemaError{Raw: raw, Problems: []string{problem}}
		}
	}

	return doc, nil
}

// ParseResult turns a single model payload into a validated Result.
func ParseResult(raw string, structured bool) (*Result, error) {
	doc, err := ParseDocument(raw, structured)
	if err != nil {
		return nil, err
	}

	return doc.Result(raw)
}

// Merge copies fields from later that the document does not have yet.
// Existing fields are never overwritten.
func (d Document) Merge(later Document) {
	for key, value := range later {
		if _, exists := d[key]; exists {
			continue
		}
		d[key] = value
	}
}

// Category returns the job category derived by the model, if any.
func (d Document) Category() string {
	category, _ := d[fieldJobCategory].(string)
	return strings.TrimSpace(category)
}

// Result validates the document against the canonical schema.
// raw is attached to the returned SchemaError for diagnosis.
func (d Document) Result(raw string) (*Result, error) {
	var problems []string

	score, problem := d.score()
	if problem != "" {
		problems = append(problems, problem)
	}

	if !nonEmptyString(d[fieldSummary]) {
		problems = append(problems, "summary is required")
	}

	problems = append(problems, d.questionProblems()...)

	if len(problems) > 0 {
		return nil, &SchemaError{Raw: raw, Problems: problems}
	}

	var decoded struct {
		Summary     string     `mapstructure:"summary"`
		Feedback    string     `mapstructure:"feedback"`
		JobCategory string     `mapstructure:"job_category"`
		Questions   []Question `mapstructure:"questions"`
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(map[string]any(d)); err != nil {
		return nil, &SchemaError{Raw: raw, Problems: []string{err.Error()}}
	}

	return &Result{
		Score:       score,
		Summary:     decoded.Summary,
		Feedback:    decoded.Feedback,
		JobCategory: decoded.JobCategory,
		Questions:   decoded.Questions,
	}, nil
}

func (d Document) score() (int, string) {
	value, ok := d[fieldScore]
	if !ok || value == nil {
		return 0, "score is required"
	}

	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Sprintf("score must be an integer, got %q", v)
		}
		f = parsed
	default:
		return 0, fmt.Sprintf("score must be an integer, got %T", value)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, fmt.Sprintf("score must be an integer, got %v", f)
	}

	if f < minScore || f > maxScore {
		return 0, fmt.Sprintf("score %v is outside [%d,%d]", f, minScore, maxScore)
	}

	return int(f), ""
}

func (d Document) questionProblems() []string {
	value, ok := d[fieldQuestions]
	if !ok || value == nil {
		return []string{"questions is required"}
	}

	items, ok := value.([]any)
	if !ok {
		return []string{"questions must be a list"}
	}

	if len(items) == 0 {
		return []string{"questions must not be empty"}
	}

	var problems []string
	for i, item := range items {
		question, ok := item.(map[string]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("questions[%d] must be an object", i))
			continue
		}
		for _, key := range []string{fieldQuestionPrompt, fieldQuestionIntent, fieldQuestionTip} {
			if !nonEmptyString(question[key]) {
				problems = append(problems, fmt.Sprintf("questions[%d].%s is required", i, key))
			}
		}
	}

	return problems
}

func normalize(data map[string]any) Document {
	doc := make(Document, len(data))

	for _, field := range resultAliases {
		for _, alias := range field.aliases {
			if value, ok := data[alias]; ok {
				doc[field.canonical] = value
				break
			}
		}
	}

	if items, ok := doc[fieldQuestions].([]any); ok {
		normalized := make([]any, 0, len(items))
		for _, item := range items {
			question, ok := item.(map[string]any)
			if !ok {
				normalized = append(normalized, item)
				continue
			}
			normalized = append(normalized, normalizeQuestion(question))
		}
		doc[fieldQuestions] = normalized
	}

	return doc
}

func normalizeQuestion(data map[string]any) map[string]any {
	question := make(map[string]any, len(questionAliases))
	for _, field := range questionAliases {
		for _, alias := range field.aliases {
			if value, ok := data[alias]; ok {
				question[field.canonical] = value
				break
			}
		}
	}
	return question
}

func nonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}
